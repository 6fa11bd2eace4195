// Package query turns list parameters into a validated Spec and evaluates it
// against a snapshot of characters.
package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
)

// Query parameter names.
const (
	ParamHouse       = "house"
	ParamName        = "name"
	ParamRole        = "role"
	ParamAgeMoreThan = "age_more_than"
	ParamAgeLessThan = "age_less_than"
	ParamSortBy      = "sort_by"
	ParamSortOrder   = "sort_order"
	ParamSkip        = "skip"
	ParamLimit       = "limit"
)

// SortField names a sortable character attribute.
type SortField string

const (
	SortNone  SortField = ""
	SortName  SortField = "name"
	SortAge   SortField = "age"
	SortHouse SortField = "house"
	SortRole  SortField = "role"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

var (
	sortFields = []SortField{SortName, SortAge, SortHouse, SortRole}
	sortOrders = []SortOrder{OrderAsc, OrderDesc}
)

// Limits bounds the page size.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits mirrors the stock configuration.
var DefaultLimits = Limits{DefaultLimit: 20, MaxLimit: 100}

// Filters holds the active predicates; nil means the filter is absent.
type Filters struct {
	House       *string
	Name        *string
	Role        *string
	AgeMoreThan *int
	AgeLessThan *int
}

// Spec is a validated list request.
type Spec struct {
	Filters   Filters
	SortBy    SortField
	SortOrder SortOrder
	Skip      int
	Limit     int
}

// NewSpec returns a Spec with no filters and default paging.
func NewSpec(limits Limits) Spec {
	return Spec{SortOrder: OrderAsc, Limit: limits.normalize().DefaultLimit}
}

// Parse validates raw parameters into a Spec. Every problem is reported, keyed
// by parameter name, in a single validation error.
func Parse(params url.Values, limits Limits) (Spec, error) {
	limits = limits.normalize()
	spec := NewSpec(limits)
	problems := map[string][]string{}

	spec.Filters.House = text(params, ParamHouse)
	spec.Filters.Name = text(params, ParamName)
	spec.Filters.Role = text(params, ParamRole)

	spec.Filters.AgeMoreThan = integer(params, ParamAgeMoreThan, problems)
	spec.Filters.AgeLessThan = integer(params, ParamAgeLessThan, problems)

	if skip := integer(params, ParamSkip, problems); skip != nil {
		spec.Skip = *skip
	}
	if limit := integer(params, ParamLimit, problems); limit != nil {
		if *limit > limits.MaxLimit {
			problems[ParamLimit] = append(problems[ParamLimit], fmt.Sprintf("must be less than or equal to %d", limits.MaxLimit))
		} else {
			spec.Limit = *limit
		}
	}

	if raw := normalized(params, ParamSortBy); raw != "" {
		field := SortField(raw)
		if !slices.Contains(sortFields, field) {
			problems[ParamSortBy] = append(problems[ParamSortBy], "must be one of: "+join(sortFields))
		} else {
			spec.SortBy = field
		}
	}
	if raw := normalized(params, ParamSortOrder); raw != "" {
		order := SortOrder(raw)
		if !slices.Contains(sortOrders, order) {
			problems[ParamSortOrder] = append(problems[ParamSortOrder], "must be one of: "+join(sortOrders))
		} else {
			spec.SortOrder = order
		}
	}

	if len(problems) > 0 {
		return Spec{}, appErrors.Validation("invalid query parameters", problems)
	}
	return spec, nil
}

// Applied describes the active filters for response metadata.
func (s Spec) Applied() map[string]interface{} {
	return map[string]interface{}{
		ParamHouse:       s.Filters.House,
		ParamName:        s.Filters.Name,
		ParamRole:        s.Filters.Role,
		ParamAgeMoreThan: s.Filters.AgeMoreThan,
		ParamAgeLessThan: s.Filters.AgeLessThan,
	}
}

// AppliedSort describes the active sort for response metadata.
func (s Spec) AppliedSort() map[string]interface{} {
	var field interface{}
	if s.SortBy != SortNone {
		field = string(s.SortBy)
	}
	return map[string]interface{}{"field": field, "order": string(s.SortOrder)}
}

func (l Limits) normalize() Limits {
	if l.MaxLimit <= 0 {
		l.MaxLimit = DefaultLimits.MaxLimit
	}
	if l.DefaultLimit <= 0 || l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = min(DefaultLimits.DefaultLimit, l.MaxLimit)
	}
	return l
}

// text returns the trimmed value, or nil when absent or blank.
func text(params url.Values, key string) *string {
	v := strings.TrimSpace(params.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func normalized(params url.Values, key string) string {
	return strings.ToLower(strings.TrimSpace(params.Get(key)))
}

// integer parses a non-negative integer parameter. Blank counts as absent.
func integer(params url.Values, key string, problems map[string][]string) *int {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		problems[key] = append(problems[key], "must be an integer")
		return nil
	}
	if n < 0 {
		problems[key] = append(problems[key], "must be greater than or equal to 0")
		return nil
	}
	return &n
}

func join[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
