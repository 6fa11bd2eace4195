package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

// Result is one page of a query together with the number of matches.
type Result struct {
	Items []models.Character
	Total int
	Skip  int
	Limit int
}

// Pagination returns the page metadata for responses.
func (r Result) Pagination() *models.Pagination {
	return &models.Pagination{Skip: r.Skip, Limit: r.Limit, Total: r.Total, Returned: len(r.Items)}
}

// Apply evaluates spec against records, which are taken in their natural
// order. records is never modified.
func Apply(records []models.Character, spec Spec) Result {
	matched := filter(records, compile(spec.Filters))
	if spec.SortBy != SortNone {
		sortStable(matched, spec.SortBy, spec.SortOrder)
	}

	page := []models.Character{}
	if spec.Skip < len(matched) {
		end := len(matched)
		if spec.Limit < end-spec.Skip {
			end = spec.Skip + spec.Limit
		}
		page = append(page, matched[spec.Skip:end]...)
	}

	return Result{Items: page, Total: len(matched), Skip: spec.Skip, Limit: spec.Limit}
}

// predicate holds filters with their text values already case folded.
type predicate struct {
	house, name, role *string
	minAge, maxAge    *int
}

func compile(f Filters) predicate {
	return predicate{
		house:  foldPtr(f.House),
		name:   foldPtr(f.Name),
		role:   foldPtr(f.Role),
		minAge: f.AgeMoreThan,
		maxAge: f.AgeLessThan,
	}
}

func (p predicate) match(c models.Character) bool {
	if p.minAge != nil && c.Age < *p.minAge {
		return false
	}
	if p.maxAge != nil && c.Age > *p.maxAge {
		return false
	}
	if p.house != nil && norm(c.House) != *p.house {
		return false
	}
	if p.role != nil && norm(c.Role) != *p.role {
		return false
	}
	if p.name != nil && !strings.Contains(norm(c.Name), *p.name) {
		return false
	}
	return true
}

// filter keeps matching records in order, dropping repeated ids.
func filter(records []models.Character, p predicate) []models.Character {
	out := make([]models.Character, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for _, c := range records {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if p.match(c) {
			out = append(out, c)
		}
	}
	return out
}

type keyed struct {
	text string
	c    models.Character
}

// sortStable orders items in place. Descending inverts the comparator inside
// the same stable sort, so records with equal keys keep their original
// relative order in both directions.
func sortStable(items []models.Character, field SortField, order SortOrder) {
	keys := make([]keyed, len(items))
	for i, c := range items {
		keys[i] = keyed{c: c}
		switch field {
		case SortName:
			keys[i].text = norm(c.Name)
		case SortHouse:
			keys[i].text = norm(c.House)
		case SortRole:
			keys[i].text = norm(c.Role)
		}
	}

	compare := func(a, b keyed) int {
		if field == SortAge {
			return cmp.Compare(a.c.Age, b.c.Age)
		}
		return strings.Compare(a.text, b.text)
	}
	if order == OrderDesc {
		asc := compare
		compare = func(a, b keyed) int { return asc(b, a) }
	}

	slices.SortStableFunc(keys, compare)
	for i := range keys {
		items[i] = keys[i].c
	}
}

// norm is the comparison form of a stored text field. Surrounding whitespace
// is dropped so it lines up with the trimmed query values.
func norm(s string) string {
	return fold(strings.TrimSpace(s))
}

// fold applies Unicode case folding. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := fold(*s)
	return &v
}
