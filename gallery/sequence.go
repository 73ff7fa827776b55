package gallery

import "sort"

// Sequence flattens the per-kind groups into the album sequence: enabled
// kinds in priority order, each group sorted by (ordering, name, id).
func Sequence(cfg Config, groups map[Kind][]Item) []Item {
	var items []Item
	for _, kind := range cfg.EnabledKinds() {
		group := append([]Item(nil), groups[kind]...)
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.ItemOrdering() != b.ItemOrdering() {
				return a.ItemOrdering() < b.ItemOrdering()
			}
			if a.ItemName() != b.ItemName() {
				return a.ItemName() < b.ItemName()
			}
			return a.ItemID() < b.ItemID()
		})
		items = append(items, group...)
	}
	return items
}

type Navigation struct {
	Next             Item
	Previous         Item
	Position         int // 1-based
	NextPosition     int
	PreviousPosition int
	Total            int
}

// NextPrevious locates item in items and returns its neighbours, wrapping
// around at both ends. A single item is its own neighbour.
func NextPrevious(item Item, items []Item) (nav Navigation, err error) {
	index := -1
	for i := range items {
		if SameItem(items[i], item) {
			index = i
			break
		}
	}
	if index < 0 {
		return nav, ErrItemNotInSequence
	}
	total := len(items)
	next := (index + 1) % total
	previous := (index - 1 + total) % total
	return Navigation{
		Next:             items[next],
		Previous:         items[previous],
		Position:         index + 1,
		NextPosition:     next + 1,
		PreviousPosition: previous + 1,
		Total:            total,
	}, nil
}
