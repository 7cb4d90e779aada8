package booking

import (
	"fmt"

	"github.com/wolfman30/doorstep/internal/catalog"
)

// Selection tracks which offerings of one catalog are chosen.
// Every member id exists in the catalog.
type Selection struct {
	catalog *catalog.Catalog
	chosen  map[int]struct{}
}

// NewSelection returns an empty selection over c.
func NewSelection(c *catalog.Catalog) *Selection {
	return &Selection{catalog: c, chosen: make(map[int]struct{})}
}

// RestoreSelection rebuilds a selection from persisted ids.
func RestoreSelection(c *catalog.Catalog, ids []int) (*Selection, error) {
	s := NewSelection(c)
	for _, id := range ids {
		if !c.Contains(id) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidOfferingID, id)
		}
		s.chosen[id] = struct{}{}
	}
	return s, nil
}

// Toggle adds id if absent and removes it if present. It reports whether
// id is selected afterwards.
func (s *Selection) Toggle(id int) (bool, error) {
	if !s.catalog.Contains(id) {
		return false, fmt.Errorf("%w: %d", ErrInvalidOfferingID, id)
	}
	if _, ok := s.chosen[id]; ok {
		delete(s.chosen, id)
		return false, nil
	}
	s.chosen[id] = struct{}{}
	return true, nil
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id int) bool {
	_, ok := s.chosen[id]
	return ok
}

// SelectedItems returns the chosen offerings in catalog order.
func (s *Selection) SelectedItems() []catalog.Offering {
	items := make([]catalog.Offering, 0, len(s.chosen))
	for _, o := range s.catalog.Offerings() {
		if _, ok := s.chosen[o.ID]; ok {
			items = append(items, o)
		}
	}
	return items
}

// IDs returns the chosen ids in catalog order.
func (s *Selection) IDs() []int {
	items := s.SelectedItems()
	ids := make([]int, len(items))
	for i, o := range items {
		ids[i] = o.ID
	}
	return ids
}

// Total sums the unit prices of the selected items.
func (s *Selection) Total() int {
	return sumPrices(s.SelectedItems())
}

// Len returns the number of selected offerings.
func (s *Selection) Len() int {
	return len(s.chosen)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.chosen = make(map[int]struct{})
}

// Catalog returns the catalog the selection is bound to.
func (s *Selection) Catalog() *catalog.Catalog {
	return s.catalog
}

func sumPrices(items []catalog.Offering) int {
	total := 0
	for _, o := range items {
		total += o.UnitPrice
	}
	return total
}
