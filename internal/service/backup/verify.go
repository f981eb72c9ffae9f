package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// VerifyBackup re-reads a stored snapshot and checks its integrity. It never
// touches the live catalog. Problems are reported in the result; an error is
// returned only when the backup itself is unknown or metadata cannot be read.
func (s *Service) VerifyBackup(ctx context.Context, id uuid.UUID) (*VerificationResult, error) {
	info, err := s.backups.GetByID(ctx, id)
	if err != nil {
		s.metrics.operation("verify", err)
		return nil, fmt.Errorf("get backup: %w", err)
	}

	res := &VerificationResult{Problems: []string{}}
	defer func() {
		res.Valid = len(res.Problems) == 0
		s.metrics.operation("verify", nil)
		s.log.InfoContext(ctx, "backup verified",
			slog.String("backup_id", id.String()),
			slog.Bool("valid", res.Valid),
			slog.Int("problems", len(res.Problems)),
		)
	}()

	payload, err := s.readBlob(ctx, info.BlobKey)
	if err != nil {
		res.Problems = append(res.Problems, fmt.Sprintf("snapshot blob unreadable: %v", err))
		return res, nil
	}

	sum := sha256.Sum256(payload)
	res.ChecksumMatch = hex.EncodeToString(sum[:]) == info.Checksum
	if !res.ChecksumMatch {
		res.Problems = append(res.Problems, "checksum mismatch")
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		res.Problems = append(res.Problems, fmt.Sprintf("snapshot is not valid JSON: %v", err))
		return res, nil
	}

	res.Problems = append(res.Problems, CheckSnapshot(&snap, info.Collections)...)
	res.ItemCount = snap.Data.Count()
	if snap.TotalItems != res.ItemCount {
		res.Problems = append(res.Problems, fmt.Sprintf("totalItems is %d but data holds %d items", snap.TotalItems, res.ItemCount))
	}
	if snap.ID != info.ID {
		res.Problems = append(res.Problems, fmt.Sprintf("snapshot id %s does not match backup id %s", snap.ID, info.ID))
	}
	return res, nil
}

// CheckSnapshot returns the structural problems of snap. Every collection in
// recorded must be present in the data, and every item must carry the fields
// required to import it.
func CheckSnapshot(snap *domain.Snapshot, recorded []domain.Collection) []string {
	var problems []string

	if err := snap.Validate(); err != nil {
		problems = append(problems, describe("snapshot", err)...)
	}
	for _, c := range recorded {
		if !snap.Data.Present(c) {
			problems = append(problems, fmt.Sprintf("collection %s is recorded but missing from data", c))
		}
	}

	seen := make(map[uuid.UUID]bool)
	for i, t := range snap.Data.AITools {
		ref := fmt.Sprintf("aiTools[%d] (%s)", i, itemRef(t.ID, t.Name))
		problems = append(problems, checkItem(ref, t.ID, seen, t.Validate())...)
	}
	seen = make(map[uuid.UUID]bool)
	for i, t := range snap.Data.Templates {
		ref := fmt.Sprintf("templates[%d] (%s)", i, itemRef(t.ID, t.Name))
		problems = append(problems, checkItem(ref, t.ID, seen, t.Validate())...)
	}
	return problems
}

func checkItem(ref string, id uuid.UUID, seen map[uuid.UUID]bool, validateErr error) []string {
	var problems []string
	if id == uuid.Nil {
		problems = append(problems, ref+": id: required")
	} else if seen[id] {
		problems = append(problems, ref+": id: duplicate")
	}
	seen[id] = true
	if validateErr != nil {
		problems = append(problems, describe(ref, validateErr)...)
	}
	return problems
}

func describe(ref string, err error) []string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return []string{ref + ": " + err.Error()}
	}
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fmt.Sprintf("%s: %s: %s", ref, fe.Field, fe.Message))
	}
	return out
}

func itemRef(id uuid.UUID, name string) string {
	if name == "" {
		return id.String()
	}
	return id.String() + " " + name
}
