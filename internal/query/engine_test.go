package query

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

func sampleCharacters() []models.Character {
	return []models.Character{
		{ID: 1, Name: "Jon Snow", House: "Stark", Age: 17, Role: "Steward"},
		{ID: 2, Name: "Daenerys Targaryen", House: "Targaryen", Age: 24, Role: "Queen"},
		{ID: 3, Name: "Arya Stark", House: "STARK", Age: 11, Role: "Assassin"},
		{ID: 4, Name: "Tyrion Lannister", House: "Lannister", Age: 24, Role: "Hand of the Queen"},
		{ID: 5, Name: "Sansa Stark", House: "stark", Age: 13, Role: "Lady"},
		{ID: 6, Name: "Cersei Lannister", House: "Lannister", Age: 24, Role: "queen"},
	}
}

func mustParse(t *testing.T, raw string) Spec {
	t.Helper()
	params, err := url.ParseQuery(raw)
	require.NoError(t, err)
	spec, err := Parse(params, DefaultLimits)
	require.NoError(t, err)
	return spec
}

func ids(items []models.Character) []int64 {
	out := make([]int64, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestApplyNoFiltersReturnsEverything(t *testing.T) {
	records := sampleCharacters()
	res := Apply(records, mustParse(t, ""))
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(res.Items))
	assert.Equal(t, 6, res.Total)
}

func TestApplyJonSnowExample(t *testing.T) {
	records := []models.Character{{ID: 1, Name: "Jon Snow", House: "Stark", Age: 17, Role: "Steward"}}

	res := Apply(records, mustParse(t, "house=stark&age_more_than=16"))
	assert.Equal(t, []int64{1}, ids(res.Items))

	res = Apply(records, mustParse(t, "age_more_than=18"))
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Total)
}

func TestApplyHouseIsCaseInsensitiveExact(t *testing.T) {
	records := sampleCharacters()
	lower := Apply(records, mustParse(t, "house=stark"))
	upper := Apply(records, mustParse(t, "house=STARK"))
	assert.Equal(t, []int64{1, 3, 5}, ids(lower.Items))
	assert.Equal(t, ids(lower.Items), ids(upper.Items))

	partial := Apply(records, mustParse(t, "house=star"))
	assert.Empty(t, partial.Items)
}

func TestApplyNameIsCaseInsensitiveContainment(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "name=STARK"))
	assert.Equal(t, []int64{3, 5}, ids(res.Items))

	res = Apply(sampleCharacters(), mustParse(t, "name=jon%20snow"))
	assert.Equal(t, []int64{1}, ids(res.Items))
}

func TestApplyRoleIsCaseInsensitiveExact(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "role=QUEEN"))
	assert.Equal(t, []int64{2, 6}, ids(res.Items))
}

func TestApplyAgeBoundsAreInclusive(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "age_more_than=13&age_less_than=24"))
	assert.Equal(t, []int64{1, 2, 4, 5, 6}, ids(res.Items))

	res = Apply(sampleCharacters(), mustParse(t, "age_more_than=30&age_less_than=10"))
	assert.Empty(t, res.Items)
}

func TestApplyFiltersCombineWithAnd(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "house=lannister&role=queen&age_less_than=24"))
	assert.Equal(t, []int64{6}, ids(res.Items))
}

func TestApplySortAscendingIsStable(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "sort_by=age"))
	assert.Equal(t, []int64{3, 5, 1, 2, 4, 6}, ids(res.Items))
	for i := 1; i < len(res.Items); i++ {
		assert.LessOrEqual(t, res.Items[i-1].Age, res.Items[i].Age)
	}
}

func TestApplySortDescendingKeepsTieOrder(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "sort_by=age&sort_order=desc"))
	// 2, 4 and 6 share age 24 and keep their original relative order.
	assert.Equal(t, []int64{2, 4, 6, 1, 5, 3}, ids(res.Items))
	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].Age, res.Items[i].Age)
	}
}

func TestApplySortTextIsCaseInsensitive(t *testing.T) {
	res := Apply(sampleCharacters(), mustParse(t, "sort_by=house"))
	// Stark, STARK and stark compare equal and stay in id order.
	assert.Equal(t, []int64{4, 6, 1, 3, 5, 2}, ids(res.Items))

	res = Apply(sampleCharacters(), mustParse(t, "sort_by=house&sort_order=desc"))
	assert.Equal(t, []int64{2, 1, 3, 5, 4, 6}, ids(res.Items))

	res = Apply(sampleCharacters(), mustParse(t, "sort_by=name"))
	assert.Equal(t, []int64{3, 6, 2, 1, 5, 4}, ids(res.Items))

	res = Apply(sampleCharacters(), mustParse(t, "sort_by=role"))
	assert.Equal(t, []int64{3, 4, 5, 2, 6, 1}, ids(res.Items))
}

func TestApplyPagination(t *testing.T) {
	records := sampleCharacters()
	full := Apply(records, mustParse(t, "sort_by=age&limit=100"))

	res := Apply(records, mustParse(t, "sort_by=age&skip=2&limit=3"))
	assert.Equal(t, ids(full.Items[2:5]), ids(res.Items))
	assert.Equal(t, 6, res.Total)
	assert.Equal(t, &models.Pagination{Skip: 2, Limit: 3, Total: 6, Returned: 3}, res.Pagination())

	res = Apply(records, mustParse(t, "skip=4&limit=10"))
	assert.Equal(t, []int64{5, 6}, ids(res.Items))

	res = Apply(records, mustParse(t, "skip=50"))
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 6, res.Total)

	res = Apply(records, mustParse(t, "limit=0"))
	assert.Empty(t, res.Items)
	assert.Equal(t, 6, res.Total)
}

func TestApplyDropsDuplicateIDs(t *testing.T) {
	records := append(sampleCharacters(), models.Character{ID: 1, Name: "Jon Snow", House: "Stark", Age: 17})
	res := Apply(records, mustParse(t, "house=stark"))
	assert.Equal(t, []int64{1, 3, 5}, ids(res.Items))
	assert.Equal(t, 3, res.Total)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := sampleCharacters()
	before := ids(records)
	Apply(records, mustParse(t, "sort_by=name&sort_order=desc"))
	assert.Equal(t, before, ids(records))
}

func TestApplyFilterSoundAndComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	houses := []string{"Stark", "stark ", "Lannister", " Targaryen", "Greyjoy"}
	roles := []string{"King", "knight", " Lady ", "Maester"}
	records := make([]models.Character, 200)
	for i := range records {
		records[i] = models.Character{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("Person %c%d", 'A'+rune(rng.Intn(26)), rng.Intn(50)),
			House: houses[rng.Intn(len(houses))],
			Age:   rng.Intn(80),
			Role:  roles[rng.Intn(len(roles))],
		}
	}

	queries := []string{
		"house=STARK",
		"role=knight&age_more_than=20",
		"name=person%20b&age_less_than=40",
		"house=greyjoy&role=lady&age_more_than=10&age_less_than=60",
	}
	for _, raw := range queries {
		spec := mustParse(t, raw+"&limit=100")
		spec.Limit = len(records)
		res := Apply(records, spec)

		want := 0
		for _, c := range records {
			if matchesReference(c, spec.Filters) {
				want++
			}
		}
		assert.Equal(t, want, res.Total, raw)
		for _, c := range res.Items {
			assert.True(t, matchesReference(c, spec.Filters), "%s returned %+v", raw, c)
		}
	}
}

func TestApplyIgnoresPaddingOnStoredText(t *testing.T) {
	records := []models.Character{
		{ID: 1, Name: " Jon Snow", House: "Stark ", Age: 17, Role: " King"},
		{ID: 2, Name: "Robb Stark", House: "Stark", Age: 17, Role: "King in the North"},
		{ID: 3, Name: "Tommen Baratheon ", House: "Baratheon", Age: 10, Role: "King "},
	}

	res := Apply(records, mustParse(t, "house=stark"))
	assert.Equal(t, []int64{1, 2}, ids(res.Items))

	res = Apply(records, mustParse(t, "house=Stark%20&role=king"))
	assert.Equal(t, []int64{1}, ids(res.Items))

	res = Apply(records, mustParse(t, "role=KING"))
	assert.Equal(t, []int64{1, 3}, ids(res.Items))

	res = Apply(records, mustParse(t, "name=jon%20snow"))
	assert.Equal(t, []int64{1}, ids(res.Items))

	res = Apply(records, mustParse(t, "sort_by=name"))
	assert.Equal(t, []int64{1, 2, 3}, ids(res.Items))
}

// matchesReference is a deliberately naive restatement of the filter rules.
func matchesReference(c models.Character, f Filters) bool {
	if f.House != nil && !strings.EqualFold(strings.TrimSpace(c.House), *f.House) {
		return false
	}
	if f.Role != nil && !strings.EqualFold(strings.TrimSpace(c.Role), *f.Role) {
		return false
	}
	if f.Name != nil && !strings.Contains(strings.ToLower(strings.TrimSpace(c.Name)), strings.ToLower(*f.Name)) {
		return false
	}
	if f.AgeMoreThan != nil && c.Age < *f.AgeMoreThan {
		return false
	}
	if f.AgeLessThan != nil && c.Age > *f.AgeLessThan {
		return false
	}
	return true
}
