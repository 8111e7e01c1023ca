// Package ordering renumbers a ranked list after one item moves.
package ordering

import "errors"

// ErrNotFound is returned when the moved id is not in the list.
var ErrNotFound = errors.New("item not in sequence")

type Item struct {
	ID    int64
	Order int
}

// Assignment is a new ordinal for one id.
type Assignment struct {
	ID    int64
	Order int
}

type Plan struct {
	// Sequence is the full list after the move, ordinals 1..N.
	Sequence []Item
	// Changes holds only the rows whose ordinal differs from before.
	Changes []Assignment
}

// Orders returns Changes as an id→ordinal map.
func (p Plan) Orders() map[int64]int {
	m := make(map[int64]int, len(p.Changes))
	for _, c := range p.Changes {
		m[c.ID] = c.Order
	}
	return m
}

// Move removes id from items (sorted by current ordinal), clamps target into
// [1, len(items)] and reinserts it there, then numbers every item densely
// from 1. Items whose stored ordinal was already off (gaps, duplicates) are
// repaired as part of the renumbering.
func Move(items []Item, id int64, target int) (Plan, error) {
	from := -1
	for i, it := range items {
		if it.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return Plan{}, ErrNotFound
	}

	rest := make([]Item, 0, len(items))
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	n := len(rest) + 1
	if target < 1 {
		target = 1
	}
	if target > n {
		target = n
	}

	seq := make([]Item, 0, n)
	seq = append(seq, rest[:target-1]...)
	seq = append(seq, items[from])
	seq = append(seq, rest[target-1:]...)

	var changes []Assignment
	for i := range seq {
		want := i + 1
		if seq[i].Order != want {
			changes = append(changes, Assignment{ID: seq[i].ID, Order: want})
			seq[i].Order = want
		}
	}

	return Plan{Sequence: seq, Changes: changes}, nil
}
