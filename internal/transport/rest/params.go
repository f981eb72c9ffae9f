package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// query reads typed query parameters and collects every parse error.
type query struct {
	values url.Values
	errs   []domain.FieldError
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query()}
}

func (q *query) fail(name, msg string) {
	q.errs = append(q.errs, domain.FieldError{Field: name, Message: msg})
}

func (q *query) str(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

func (q *query) optStr(name string) *string {
	if v := q.str(name); v != "" {
		return &v
	}
	return nil
}

// list accepts both repeated parameters and comma separated values.
func (q *query) list(name string) []string {
	var out []string
	for _, raw := range q.values[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (q *query) int(name string, def int) int {
	raw := q.str(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "must be an integer")
		return def
	}
	return n
}

func (q *query) bool(name string) bool {
	v := q.optBool(name)
	return v != nil && *v
}

func (q *query) optBool(name string) *bool {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, "must be true or false")
		return nil
	}
	return &b
}

func (q *query) uuid(name string) *uuid.UUID {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		q.fail(name, "must be a UUID")
		return nil
	}
	return &id
}

func (q *query) time(name string) *time.Time {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		q.fail(name, "must be an RFC 3339 timestamp")
		return nil
	}
	return &t
}

// page reads limit and offset with the listing defaults.
func (q *query) page() (limit, offset int) {
	limit = q.int("limit", defaultPageSize)
	offset = q.int("offset", 0)
	if limit <= 0 || limit > maxPageSize {
		q.fail("limit", fmt.Sprintf("must be between 1 and %d", maxPageSize))
	}
	if offset < 0 {
		q.fail("offset", "must be >= 0")
	}
	return limit, offset
}

func (q *query) err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return domain.NewValidationErrors(q.errs)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

// enumPtr converts an optional query value into an enum pointer.
func enumPtr[T ~string](v *string) *T {
	if v == nil {
		return nil
	}
	e := T(strings.ToUpper(*v))
	return &e
}

func enumList[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, T(strings.ToUpper(v)))
	}
	return out
}
