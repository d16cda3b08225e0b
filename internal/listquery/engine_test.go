package listquery

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/rbac"
)

type item struct {
	ID        int
	Title     string
	Body      string
	Kind      string
	Date      time.Time
	Important bool
	Score     float64
	Roles     []rbac.Role
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var itemSchema = Schema[item]{
	Search: []func(item) string{
		func(i item) string { return i.Title },
		func(i item) string { return i.Body },
	},
	Filters: map[string]func(item) string{
		"kind": func(i item) string { return i.Kind },
	},
	Flags: map[string]func(item) bool{
		"important": func(i item) bool { return i.Important },
	},
	Sorts: map[string]SortField[item]{
		"title":     TextField(func(i item) string { return i.Title }),
		"date":      DateField(func(i item) time.Time { return i.Date }),
		"score":     NumberField(func(i item) float64 { return i.Score }),
		"important": BoolField(func(i item) bool { return i.Important }),
	},
	Visibility:  func(i item) []rbac.Role { return i.Roles },
	DefaultSort: Sort{Key: "date", Direction: Desc},
}

func ids(items []item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func fixture() []item {
	all := []rbac.Role{rbac.RoleStudent, rbac.RoleFaculty, rbac.RoleAdmin}
	return []item{
		{ID: 1, Title: "Mid-Semester Exam Schedule", Body: "Exams begin on 15 March", Kind: "exam", Date: day("2024-03-15"), Important: true, Score: 3, Roles: all},
		{ID: 2, Title: "Semester Start Date", Body: "Classes begin", Kind: "academic", Date: day("2024-01-08"), Score: 1, Roles: all},
		{ID: 3, Title: "Library Timings Extended", Body: "Open till 10 PM", Kind: "academic", Date: day("2024-02-15"), Score: 2, Roles: []rbac.Role{rbac.RoleAdmin}},
	}
}

func TestApplyDateSortAscending(t *testing.T) {
	got := Apply(fixture(), itemSchema, Query{Sort: Sort{Key: "date", Direction: Asc}})
	dates := make([]string, len(got))
	for i, it := range got {
		dates[i] = it.Date.Format("2006-01-02")
	}
	if diff := cmp.Diff([]string{"2024-01-08", "2024-02-15", "2024-03-15"}, dates); diff != "" {
		t.Fatalf("date order mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFreeText(t *testing.T) {
	got := Apply(fixture(), itemSchema, Query{FreeText: "library"})
	require.Len(t, got, 1)
	assert.Equal(t, "Library Timings Extended", got[0].Title)

	got = Apply(fixture(), itemSchema, Query{FreeText: "  BEGIN "})
	assert.ElementsMatch(t, []int{1, 2}, ids(got))
}

func TestApplyWhitespaceFreeTextIsEmpty(t *testing.T) {
	got := Apply(fixture(), itemSchema, Query{FreeText: " \t "})
	assert.Len(t, got, 3)
}

func TestApplyVisibility(t *testing.T) {
	student := Apply(fixture(), itemSchema, Query{VisibilityRole: rbac.RoleStudent})
	assert.NotContains(t, ids(student), 3)

	admin := Apply(fixture(), itemSchema, Query{VisibilityRole: rbac.RoleAdmin})
	assert.Contains(t, ids(admin), 3)

	noConcept := itemSchema
	noConcept.Visibility = nil
	assert.Len(t, Apply(fixture(), noConcept, Query{VisibilityRole: rbac.RoleStudent}), 3)
}

func TestApplyFiltersAndFlags(t *testing.T) {
	got := Apply(fixture(), itemSchema, Query{Filters: map[string]string{"kind": "academic"}})
	assert.Equal(t, []int{3, 2}, ids(got))

	got = Apply(fixture(), itemSchema, Query{Filters: map[string]string{"kind": "Academic"}})
	assert.Empty(t, got, "filters are case-sensitive")

	got = Apply(fixture(), itemSchema, Query{Filters: map[string]string{"kind": ""}})
	assert.Len(t, got, 3, "empty filter values are skipped")

	got = Apply(fixture(), itemSchema, Query{Flags: []string{"important"}})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyReset(t *testing.T) {
	got := Apply(fixture(), itemSchema, itemSchema.Reset())
	assert.Equal(t, []int{1, 3, 2}, ids(got))
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, itemSchema, Query{FreeText: "x"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := fixture()
	before := ids(records)
	_ = Apply(records, itemSchema, Query{Sort: Sort{Key: "title", Direction: Asc}})
	assert.Equal(t, before, ids(records))
}

func TestApplyIsDeterministicSubsetWithoutDuplicates(t *testing.T) {
	records := fixture()
	queries := []Query{
		{},
		{FreeText: "semester", Sort: Sort{Key: "title", Direction: Desc}},
		{Flags: []string{"important"}, Sort: Sort{Key: "score", Direction: Asc}},
		{VisibilityRole: rbac.RoleFaculty, Sort: Sort{Key: "important", Direction: Desc}},
	}
	for i, q := range queries {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			first := Apply(records, itemSchema, q)
			second := Apply(records, itemSchema, q)
			assert.Equal(t, ids(first), ids(second))

			seen := map[int]bool{}
			source := map[int]bool{}
			for _, r := range records {
				source[r.ID] = true
			}
			for _, r := range first {
				assert.False(t, seen[r.ID], "duplicate %d", r.ID)
				assert.True(t, source[r.ID], "unknown %d", r.ID)
				seen[r.ID] = true
			}
		})
	}
}

func TestApplyStableOnTies(t *testing.T) {
	records := []item{
		{ID: 1, Title: "b", Important: true},
		{ID: 2, Title: "a", Important: false},
		{ID: 3, Title: "c", Important: true},
		{ID: 4, Title: "d", Important: false},
	}
	got := Apply(records, itemSchema, Query{Sort: Sort{Key: "important", Direction: Desc}})
	assert.Equal(t, []int{1, 3, 2, 4}, ids(got))

	got = Apply(records, itemSchema, Query{Sort: Sort{Key: "important", Direction: Asc}})
	assert.Equal(t, []int{2, 4, 1, 3}, ids(got))
}

func TestApplyMissingValuesSortFirst(t *testing.T) {
	records := []item{
		{ID: 1, Date: day("2024-02-01")},
		{ID: 2},
		{ID: 3, Date: day("2024-01-01")},
	}
	got := Apply(records, itemSchema, Query{Sort: Sort{Key: "date", Direction: Asc}})
	assert.Equal(t, []int{2, 3, 1}, ids(got))
}

func TestApplyPanicsOnUnknownNames(t *testing.T) {
	assert.Panics(t, func() { Apply(fixture(), itemSchema, Query{Sort: Sort{Key: "nope", Direction: Asc}}) })
	assert.Panics(t, func() { Apply(fixture(), itemSchema, Query{Sort: Sort{Key: "date", Direction: "up"}}) })
	assert.Panics(t, func() { Apply(fixture(), itemSchema, Query{Filters: map[string]string{"nope": "x"}}) })
	assert.Panics(t, func() { Apply(fixture(), itemSchema, Query{Flags: []string{"nope"}}) })
}

func TestNormalize(t *testing.T) {
	q := itemSchema.Normalize(Query{
		FreeText: "  exam ",
		Filters:  map[string]string{"kind": "exam", "nope": "x", "other": ""},
		Flags:    []string{"important", "nope", "important"},
		Sort:     Sort{Key: "nope", Direction: "sideways"},
	})
	assert.Equal(t, "exam", q.FreeText)
	assert.Equal(t, map[string]string{"kind": "exam"}, q.Filters)
	assert.Equal(t, []string{"important"}, q.Flags)
	assert.Equal(t, itemSchema.DefaultSort, q.Sort)
	assert.NotPanics(t, func() { Apply(fixture(), itemSchema, q) })

	q = itemSchema.Normalize(Query{Sort: Sort{Key: "title"}})
	assert.Equal(t, Sort{Key: "title", Direction: Asc}, q.Sort)
}

func TestParseQuery(t *testing.T) {
	values := url.Values{
		"q":    {"library"},
		"kind": {"academic"},
		"flag": {"important"},
		"sort": {"title"},
		"dir":  {"desc"},
	}
	q := ParseQuery(values, itemSchema)
	assert.Equal(t, "library", q.FreeText)
	assert.Equal(t, "academic", q.Filter("kind"))
	assert.True(t, q.HasFlag("important"))
	assert.Equal(t, Sort{Key: "title", Direction: Desc}, q.Sort)

	assert.Equal(t, itemSchema.Reset(), ParseQuery(url.Values{}, itemSchema))
}

func TestToggle(t *testing.T) {
	q := Query{Sort: Sort{Key: "title", Direction: Asc}}
	assert.Equal(t, Sort{Key: "title", Direction: Desc}, q.Toggle("title").Sort)
	assert.Equal(t, Sort{Key: "title", Direction: Asc}, q.Toggle("title").Toggle("title").Sort)
	assert.Equal(t, Sort{Key: "date", Direction: Asc}, q.Toggle("date").Sort)
	assert.Equal(t, Sort{Key: "title", Direction: Asc}, q.Sort, "toggle returns a copy")
}

func TestSortLinks(t *testing.T) {
	q := Query{FreeText: "exam", Sort: Sort{Key: "date", Direction: Asc}}
	links := SortLinks(q, "/calendar", "date", "title")
	assert.True(t, links["date"].Active)
	assert.Equal(t, Asc, links["date"].Direction)
	assert.Equal(t, "/calendar?dir=desc&q=exam&sort=date", links["date"].URL)
	assert.Equal(t, "/calendar?dir=asc&q=exam&sort=title", links["title"].URL)
	assert.False(t, links["title"].Active)
}

func TestPaginate(t *testing.T) {
	records := make([]int, 23)
	for i := range records {
		records[i] = i
	}
	page, meta := Paginate(records, 3, 10)
	assert.Equal(t, []int{20, 21, 22}, page)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext())
	assert.True(t, meta.HasPrev())

	page, meta = Paginate(records, 9, 10)
	assert.Equal(t, 3, meta.Page, "page is clamped")
	assert.Len(t, page, 3)

	empty, meta := Paginate([]int{}, 1, 10)
	assert.Empty(t, empty)
	assert.Equal(t, 1, meta.Page)
}

func TestParsePage(t *testing.T) {
	page, perPage := ParsePage(url.Values{"page": {"2"}, "per_page": {"25"}})
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, perPage)

	page, perPage = ParsePage(url.Values{"page": {"-1"}, "per_page": {"7"}})
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, perPage)
}

func TestNewPageLinks(t *testing.T) {
	records := make([]int, 12)
	q := Query{FreeText: "x", Sort: Sort{Key: "title", Direction: Asc}}
	p := NewPage(records, q, "/list", 1, 10, "title")
	assert.Len(t, p.Items, 10)
	assert.Empty(t, p.PrevURL)
	assert.Equal(t, "/list?dir=asc&page=2&per_page=10&q=x&sort=title", p.NextURL)
	assert.True(t, p.Sorts["title"].Active)
}
