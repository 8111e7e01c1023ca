package query

import (
	"fmt"
	"math"
	"testing"
)

type rec struct {
	id     int
	name   string
	email  string
	stage  string
	weight int
}

var schema = Schema[rec]{
	Searchable: []func(rec) string{
		func(r rec) string { return r.name },
		func(r rec) string { return r.email },
	},
	Fields: map[string]func(rec) string{
		"stage": func(r rec) string { return r.stage },
	},
	Sorts: map[string]func(a, b rec) int{
		"name":   func(a, b rec) int { return Strings(a.name, b.name) },
		"weight": func(a, b rec) int { return Ints(a.weight, b.weight) },
	},
	DefaultPageSize: 25,
}

func fixture(n int) []rec {
	stages := []string{"applied", "screen", "tech"}
	out := make([]rec, n)
	for i := range out {
		out[i] = rec{
			id:     i + 1,
			name:   fmt.Sprintf("Person %03d", i+1),
			email:  fmt.Sprintf("p%d@example.com", i+1),
			stage:  stages[i%len(stages)],
			weight: i % 4,
		}
	}
	return out
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	records := []rec{
		{id: 1, name: "Ada Lovelace", email: "ada@x.com"},
		{id: 2, name: "Bob", email: "LOVE@x.com"},
		{id: 3, name: "Carol", email: "carol@x.com"},
	}
	res := Page(records, Params{Search: "LoVe"}, schema)
	if res.Total != 2 || res.Items[0].id != 1 || res.Items[1].id != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEqualityFilter(t *testing.T) {
	records := fixture(9)
	res := Page(records, Params{Filters: map[string]string{"stage": "SCREEN"}}, schema)
	if res.Total != 3 {
		t.Fatalf("expected 3 screen records, got %d", res.Total)
	}
	for _, r := range res.Items {
		if r.stage != "screen" {
			t.Fatalf("unexpected stage %q", r.stage)
		}
	}

	for _, v := range []string{"", "all", "ALL"} {
		res = Page(records, Params{Filters: map[string]string{"stage": v}}, schema)
		if res.Total != 9 {
			t.Fatalf("filter %q should be disabled, total=%d", v, res.Total)
		}
	}
}

func TestStableSort(t *testing.T) {
	records := fixture(8)
	res := Page(records, Params{Sort: "weight", PageSize: 8}, schema)
	// equal weights keep their original relative order
	want := []int{1, 5, 2, 6, 3, 7, 4, 8}
	for i, r := range res.Items {
		if r.id != want[i] {
			t.Fatalf("position %d: got id %d, want %d", i, r.id, want[i])
		}
	}

	res = Page(records, Params{Sort: "-weight", PageSize: 8}, schema)
	want = []int{4, 8, 3, 7, 2, 6, 1, 5}
	for i, r := range res.Items {
		if r.id != want[i] {
			t.Fatalf("desc position %d: got id %d, want %d", i, r.id, want[i])
		}
	}
}

func TestUnknownSortKeepsNaturalOrder(t *testing.T) {
	records := []rec{{id: 3, name: "c"}, {id: 1, name: "a"}, {id: 2, name: "b"}}
	res := Page(records, Params{Sort: "nope"}, schema)
	for i, id := range []int{3, 1, 2} {
		if res.Items[i].id != id {
			t.Fatalf("position %d: got %d, want %d", i, res.Items[i].id, id)
		}
	}
}

func TestOutOfRangePageIsEmpty(t *testing.T) {
	res := Page(fixture(5), Params{Page: 4, PageSize: 2}, schema)
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", res.Items)
	}
	if res.Total != 5 {
		t.Fatalf("total = %d", res.Total)
	}
}

func TestHugePageValuesDoNotOverflow(t *testing.T) {
	cases := []struct {
		name       string
		page, size int
		wantItems  int
	}{
		{"MaxPage", math.MaxInt, 10, 0},
		{"MaxPageOverFive", math.MaxInt / 5, 10, 0},
		{"MaxSize", 1, math.MaxInt, 3},
		{"MaxBoth", math.MaxInt, math.MaxInt, 0},
		{"SecondPageMaxSize", 2, math.MaxInt, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Page(fixture(3), Params{Page: c.page, PageSize: c.size}, schema)
			if res.Items == nil || len(res.Items) != c.wantItems {
				t.Fatalf("page=%d size=%d: got %d items, want %d", c.page, c.size, len(res.Items), c.wantItems)
			}
			if res.Total != 3 {
				t.Fatalf("total = %d", res.Total)
			}
		})
	}

	if res := Page([]rec{}, Params{Page: math.MaxInt, PageSize: math.MaxInt}, schema); res.Items == nil || res.Total != 0 {
		t.Fatalf("empty input: %#v", res)
	}
}

func TestDefaults(t *testing.T) {
	res := Page(fixture(30), Params{Page: 0, PageSize: 0}, schema)
	if res.Page != 1 || res.PageSize != 25 || len(res.Items) != 25 {
		t.Fatalf("unexpected defaults: page=%d size=%d items=%d", res.Page, res.PageSize, len(res.Items))
	}
}

func TestPaginationExhaustiveAndDisjoint(t *testing.T) {
	records := fixture(47)
	params := Params{Filters: map[string]string{"stage": "tech"}, Sort: "-name"}
	full := Page(records, Params{Filters: params.Filters, Sort: params.Sort, PageSize: len(records)}, schema)

	for k := 1; k <= 20; k++ {
		seen := map[int]int{}
		var order []int
		for p := 1; ; p++ {
			params.Page, params.PageSize = p, k
			res := Page(records, params, schema)
			if res.Total != full.Total {
				t.Fatalf("k=%d page=%d total=%d want %d", k, p, res.Total, full.Total)
			}
			if len(res.Items) == 0 {
				break
			}
			for _, r := range res.Items {
				seen[r.id]++
				order = append(order, r.id)
			}
		}
		if len(order) != full.Total {
			t.Fatalf("k=%d: concatenated %d items, want %d", k, len(order), full.Total)
		}
		for i, r := range full.Items {
			if order[i] != r.id || seen[r.id] != 1 {
				t.Fatalf("k=%d: item %d mismatch or duplicated", k, i)
			}
		}
	}
}

func TestThousandRecordsPageSize25(t *testing.T) {
	records := fixture(1000)
	for p := 1; p <= 40; p++ {
		res := Page(records, Params{Page: p, PageSize: 25}, schema)
		if res.Total != 1000 || len(res.Items) != 25 {
			t.Fatalf("page %d: total=%d items=%d", p, res.Total, len(res.Items))
		}
	}
	if res := Page(records, Params{Page: 41, PageSize: 25}, schema); len(res.Items) != 0 {
		t.Fatalf("page 41 should be empty")
	}
}
