package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned when a category id is not configured.
	ErrUnknownCategory = errors.New("catalog: unknown category")

	// ErrDuplicateOffering is returned when two offerings share an id.
	ErrDuplicateOffering = errors.New("catalog: duplicate offering id")

	// ErrNegativePrice is returned when an offering has a negative unit price.
	ErrNegativePrice = errors.New("catalog: negative unit price")
)

// Offering is a bookable service. Prices are in minor currency units.
// JSON names follow the Booking Service wire contract.
type Offering struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	UnitPrice     int    `json:"price"`
	DurationLabel string `json:"time"`
	ImageRef      string `json:"image"`
}

// Catalog is an ordered, immutable set of offerings.
type Catalog struct {
	offerings []Offering
	index     map[int]int
}

// New builds a catalog, preserving the given order.
func New(offerings []Offering) (*Catalog, error) {
	c := &Catalog{
		offerings: make([]Offering, len(offerings)),
		index:     make(map[int]int, len(offerings)),
	}
	for i, o := range offerings {
		if _, dup := c.index[o.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateOffering, o.ID)
		}
		if o.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: offering %d", ErrNegativePrice, o.ID)
		}
		c.offerings[i] = o
		c.index[o.ID] = i
	}
	return c, nil
}

// MustNew is New for static inventories; it panics on invalid input.
func MustNew(offerings []Offering) *Catalog {
	c, err := New(offerings)
	if err != nil {
		panic(err)
	}
	return c
}

// Offerings returns a copy of the offerings in catalog order.
func (c *Catalog) Offerings() []Offering {
	out := make([]Offering, len(c.offerings))
	copy(out, c.offerings)
	return out
}

// Contains reports whether id belongs to the catalog.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of offerings.
func (c *Catalog) Len() int {
	return len(c.offerings)
}
