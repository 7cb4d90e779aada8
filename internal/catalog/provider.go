package catalog

import "fmt"

// Provider supplies categories and their session-immutable catalogs.
type Provider interface {
	Categories() []Category
	Category(id string) (Category, error)
	Catalog(categoryID string) (*Catalog, error)
}

const (
	CategorySalon          = "salon"
	CategoryTransportation = "transportation"
	CategoryGeneral        = "general"
)

var salonOfferings = []Offering{
	{ID: 1, Name: "Haircut", UnitPrice: 250, DurationLabel: "30 mins", ImageRef: "/assets/haircut.jpeg"},
	{ID: 2, Name: "Facial", UnitPrice: 800, DurationLabel: "60 mins", ImageRef: "/assets/facial.jpeg"},
	{ID: 3, Name: "Waxing", UnitPrice: 500, DurationLabel: "45 mins", ImageRef: "/icons/waxing.png"},
	{ID: 4, Name: "Threading", UnitPrice: 150, DurationLabel: "15 mins", ImageRef: "/icons/threading.png"},
	{ID: 5, Name: "Hair Coloring", UnitPrice: 1000, DurationLabel: "75 mins", ImageRef: "/icons/coloring.png"},
	{ID: 6, Name: "Hair Spa", UnitPrice: 700, DurationLabel: "60 mins", ImageRef: "/icons/spa.png"},
}

var transportationOfferings = []Offering{
	{ID: 1, Name: "House Shifting (Local)", UnitPrice: 4000, DurationLabel: "4–6 hours", ImageRef: "/icons/house-shifting.png"},
	{ID: 2, Name: "Inter-City Moving", UnitPrice: 12000, DurationLabel: "1–2 days", ImageRef: "/icons/intercity-moving.png"},
	{ID: 3, Name: "Mini Truck Rental", UnitPrice: 1000, DurationLabel: "Per hour", ImageRef: "/icons/mini-truck.png"},
	{ID: 4, Name: "Bike Transport", UnitPrice: 2000, DurationLabel: "1 day", ImageRef: "/icons/bike-transport.png"},
	{ID: 5, Name: "Furniture Moving", UnitPrice: 1500, DurationLabel: "2–3 hours", ImageRef: "/icons/furniture.png"},
}

type entry struct {
	category Category
	catalog  *Catalog
}

// StaticProvider serves fixed in-process inventories.
type StaticProvider struct {
	order   []string
	entries map[string]entry
}

// NewStaticProvider returns the built-in salon, transportation and general
// categories.
func NewStaticProvider() *StaticProvider {
	p := &StaticProvider{entries: make(map[string]entry)}
	p.add(Category{
		ID:      CategorySalon,
		Name:    "Salon for Men & Women",
		Tagline: "Top-rated beauticians at your doorstep",
		Policy:  SchedulePolicy{TimeMode: TimeModeFree, AddressRequired: true},
	}, MustNew(salonOfferings))
	p.add(Category{
		ID:      CategoryTransportation,
		Name:    "Transportation & Moving Services",
		Tagline: "Reliable moving and shifting help at your doorstep",
		Policy:  SchedulePolicy{TimeMode: TimeModeFree},
	}, MustNew(transportationOfferings))
	p.add(Category{
		ID:      CategoryGeneral,
		Name:    "General Appointment",
		Tagline: "Pick a day and a two-hour window",
		Policy:  SchedulePolicy{TimeMode: TimeModeSlot, Slots: DefaultSlots},
	}, MustNew(salonOfferings))
	return p
}

// NewProvider builds a provider from explicit categories and catalogs, in
// the given order. Used by tests and alternate inventories.
func NewProvider(categories []Category, catalogs map[string]*Catalog) (*StaticProvider, error) {
	p := &StaticProvider{entries: make(map[string]entry)}
	for _, c := range categories {
		cat, ok := catalogs[c.ID]
		if !ok {
			return nil, fmt.Errorf("catalog: no inventory for category %q", c.ID)
		}
		p.add(c, cat)
	}
	return p, nil
}

func (p *StaticProvider) add(c Category, cat *Catalog) {
	p.order = append(p.order, c.ID)
	p.entries[c.ID] = entry{category: c, catalog: cat}
}

// Categories lists categories in registration order.
func (p *StaticProvider) Categories() []Category {
	out := make([]Category, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id].category)
	}
	return out
}

// Category returns the category configuration for id.
func (p *StaticProvider) Category(id string) (Category, error) {
	e, ok := p.entries[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	return e.category, nil
}

// Catalog returns the catalog for a category.
func (p *StaticProvider) Catalog(categoryID string) (*Catalog, error) {
	e, ok := p.entries[categoryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	return e.catalog, nil
}
