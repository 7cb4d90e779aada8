package booking

import (
	"errors"
	"testing"

	"github.com/wolfman30/doorstep/internal/catalog"
)

func salonCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewStaticProvider().Catalog(catalog.CategorySalon)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	return c
}

func TestSelection_ToggleIsItsOwnInverse(t *testing.T) {
	sel := NewSelection(salonCatalog(t))
	if _, err := sel.Toggle(3); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	before := sel.IDs()

	for _, id := range []int{1, 1} {
		if _, err := sel.Toggle(id); err != nil {
			t.Fatalf("Toggle(%d) error = %v", id, err)
		}
	}

	after := sel.IDs()
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("ids = %v, want %v", after, before)
	}
}

func TestSelection_ToggleReportsMembership(t *testing.T) {
	sel := NewSelection(salonCatalog(t))

	on, err := sel.Toggle(2)
	if err != nil || !on {
		t.Fatalf("first Toggle = (%v, %v), want (true, nil)", on, err)
	}
	if !sel.Contains(2) {
		t.Fatal("expected 2 to be selected")
	}
	on, err = sel.Toggle(2)
	if err != nil || on {
		t.Fatalf("second Toggle = (%v, %v), want (false, nil)", on, err)
	}
	if sel.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", sel.Len())
	}
}

func TestSelection_UnknownIDLeavesSelectionUnchanged(t *testing.T) {
	sel := NewSelection(salonCatalog(t))
	_, _ = sel.Toggle(1)

	_, err := sel.Toggle(999)
	if !errors.Is(err, ErrInvalidOfferingID) {
		t.Fatalf("err = %v, want ErrInvalidOfferingID", err)
	}
	if sel.Len() != 1 || !sel.Contains(1) {
		t.Fatalf("selection changed: %v", sel.IDs())
	}
}

func TestSelection_ItemsFollowCatalogOrder(t *testing.T) {
	sel := NewSelection(salonCatalog(t))
	for _, id := range []int{5, 1, 3} {
		_, _ = sel.Toggle(id)
	}

	items := sel.SelectedItems()
	want := []int{1, 3, 5}
	for i, o := range items {
		if o.ID != want[i] {
			t.Fatalf("items[%d].ID = %d, want %d", i, o.ID, want[i])
		}
	}
}

func TestSelection_Total(t *testing.T) {
	sel := NewSelection(salonCatalog(t))
	if got := sel.Total(); got != 0 {
		t.Fatalf("empty Total() = %d, want 0", got)
	}

	_, _ = sel.Toggle(1) // Haircut 250
	_, _ = sel.Toggle(2) // Facial 800
	if got := sel.Total(); got != 1050 {
		t.Fatalf("Total() = %d, want 1050", got)
	}

	sel.Clear()
	if got := sel.Total(); got != 0 {
		t.Fatalf("Total() after Clear = %d, want 0", got)
	}
}

func TestRestoreSelection(t *testing.T) {
	c := salonCatalog(t)
	sel, err := RestoreSelection(c, []int{4, 2})
	if err != nil {
		t.Fatalf("RestoreSelection() error = %v", err)
	}
	if ids := sel.IDs(); len(ids) != 2 || ids[0] != 2 || ids[1] != 4 {
		t.Fatalf("IDs() = %v, want [2 4]", ids)
	}

	if _, err := RestoreSelection(c, []int{77}); !errors.Is(err, ErrInvalidOfferingID) {
		t.Fatalf("err = %v, want ErrInvalidOfferingID", err)
	}
}
