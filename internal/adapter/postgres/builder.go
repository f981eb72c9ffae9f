package postgres

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Builder is the squirrel statement builder configured for PostgreSQL placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArrayOverlapFold matches rows whose text[] column shares at least one value
// with values, comparing trimmed and lower-cased strings.
func ArrayOverlapFold(column string, values []string) sq.Sqlizer {
	return sq.Expr(
		"EXISTS (SELECT 1 FROM unnest("+column+") AS v WHERE lower(btrim(v)) = ANY(?))",
		FoldAll(values),
	)
}

// FoldAll trims and lower-cases every value.
func FoldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

// ILike matches columns containing the search term, case-insensitively.
func ILike(search string, columns ...string) sq.Sqlizer {
	pattern := "%" + escapeLike(strings.TrimSpace(search)) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.ILike{c: pattern})
	}
	return or
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
