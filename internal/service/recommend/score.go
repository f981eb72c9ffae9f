package recommend

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// Soft-match values shared by every dimension.
const (
	matchExact   = 1.0
	matchPartial = 0.5
	matchNone    = 0.0
)

// Popularity blend. Trending adds the configured bonus on top.
const (
	usageShare  = 0.6
	ratingShare = 0.4

	// templates count as trending after this many ratings in the last 30 days
	trendingRecentRatings = 3
)

// relatedCategories lists categories that serve overlapping classroom needs.
var relatedCategories = map[domain.ToolCategory][]domain.ToolCategory{
	domain.ToolCategoryTextGeneration:  {domain.ToolCategoryResearch, domain.ToolCategoryAssessment},
	domain.ToolCategoryPresentation:    {domain.ToolCategoryImageGeneration, domain.ToolCategoryVideo},
	domain.ToolCategoryImageGeneration: {domain.ToolCategoryPresentation, domain.ToolCategoryVideo},
	domain.ToolCategoryVideo:           {domain.ToolCategoryPresentation, domain.ToolCategoryImageGeneration},
	domain.ToolCategoryAssessment:      {domain.ToolCategoryTextGeneration, domain.ToolCategoryDataAnalysis},
	domain.ToolCategoryDataAnalysis:    {domain.ToolCategoryAssessment, domain.ToolCategoryResearch},
	domain.ToolCategoryResearch:        {domain.ToolCategoryTextGeneration, domain.ToolCategoryDataAnalysis},
}

// difficultyMatch is 1 for the wanted level, 0.5 for a neighbouring one and
// 0 otherwise. An unset criterion scores 0.5 for everything.
func difficultyMatch(want *domain.Difficulty, have domain.Difficulty) float64 {
	if want == nil {
		return matchPartial
	}
	if *want == have {
		return matchExact
	}
	w, h := want.Rank(), have.Rank()
	if w < 0 || h < 0 {
		return matchNone
	}
	if w-h == 1 || h-w == 1 {
		return matchPartial
	}
	return matchNone
}

// categoryRelevance is 1 for the wanted category, 0.5 for a related one and
// 0 otherwise. An unset criterion scores 0.5 for everything.
func categoryRelevance(want *domain.ToolCategory, have domain.ToolCategory) float64 {
	if want == nil {
		return matchPartial
	}
	if *want == have {
		return matchExact
	}
	for _, c := range relatedCategories[*want] {
		if c == have {
			return matchPartial
		}
	}
	return matchNone
}

// popularityScore blends usage normalised against the candidate set with the
// average rating, adds the trending bonus and clamps to [0,1].
func popularityScore(usage, maxUsage int, e domain.Engagement, trending bool, bonus float64) float64 {
	var score float64
	if maxUsage > 0 {
		score += usageShare * float64(usage) / float64(maxUsage)
	}
	if e.RatingCount > 0 {
		score += ratingShare * e.RatingAvg / domain.MaxRating
	}
	if trending {
		score += bonus
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type ranked struct {
	score float64
	name  string
	id    uuid.UUID
}

// less orders by score descending, then case-insensitive name, then id.
func (a ranked) less(b ranked) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	an, bn := strings.ToLower(a.name), strings.ToLower(b.name)
	if an != bn {
		return an < bn
	}
	return a.id.String() < b.id.String()
}

func sortRanked[T any](items []T, key func(T) ranked) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]).less(key(items[j]))
	})
}
