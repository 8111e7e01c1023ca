// Package query filters, sorts and paginates in-memory collection snapshots.
package query

import (
	"slices"
	"strings"
)

// Params are the listing options a caller may supply.
type Params struct {
	Search   string
	Filters  map[string]string
	Sort     string
	Page     int
	PageSize int
}

// Schema describes how Params apply to one entity type.
type Schema[T any] struct {
	// Searchable fields are matched by case-insensitive substring; any hit keeps the record.
	Searchable []func(T) string
	// Fields are the equality filters, keyed by filter name.
	Fields map[string]func(T) string
	// Sorts compare two records for a sort key.
	Sorts map[string]func(a, b T) int
	// DefaultPageSize applies when Params.PageSize < 1.
	DefaultPageSize int
}

type Result[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Page runs p against records. records must already be in the entity's
// natural order; an unknown sort key keeps that order.
func Page[T any](records []T, p Params, s Schema[T]) Result[T] {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = s.DefaultPageSize
	}
	if size < 1 {
		size = 10
	}

	filtered := make([]T, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(p.Search))
	for _, r := range records {
		if search != "" && !matchesAny(r, search, s.Searchable) {
			continue
		}
		if !matchesFilters(r, p.Filters, s.Fields) {
			continue
		}
		filtered = append(filtered, r)
	}

	key, desc := strings.CutPrefix(strings.TrimSpace(p.Sort), "-")
	if cmp, ok := s.Sorts[key]; ok {
		slices.SortStableFunc(filtered, func(a, b T) int {
			if desc {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
	}

	total := len(filtered)
	items := []T{}
	// Compare by division so huge page or size values cannot overflow.
	if total > 0 && page-1 <= (total-1)/size {
		start := (page - 1) * size
		end := total
		if size < total-start {
			end = start + size
		}
		items = filtered[start:end]
	}

	return Result[T]{Items: items, Total: total, Page: page, PageSize: size}
}

func matchesAny[T any](r T, search string, fields []func(T) string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(r)), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](r T, filters map[string]string, fields map[string]func(T) string) bool {
	for name, want := range filters {
		want = strings.TrimSpace(want)
		if want == "" || strings.EqualFold(want, "all") {
			continue
		}
		f, ok := fields[name]
		if !ok {
			continue
		}
		if !strings.EqualFold(f(r), want) {
			return false
		}
	}
	return true
}

// Strings compares two strings case-insensitively.
func Strings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Ints compares two integers.
func Ints[N ~int | ~int64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
