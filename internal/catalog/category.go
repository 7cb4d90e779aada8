package catalog

import "strings"

// TimeMode selects how a category collects the appointment time.
type TimeMode string

const (
	// TimeModeSlot picks one label from a fixed vocabulary of windows.
	TimeModeSlot TimeMode = "slot"
	// TimeModeFree takes an HH:MM time of day merged onto the chosen date.
	TimeModeFree TimeMode = "free"
)

// SlotPlaceholder is the label shown before any slot is chosen.
const SlotPlaceholder = "Select a time slot"

// Slot is one enumerated time window.
type Slot struct {
	Label     string `json:"label"`
	Display   string `json:"display"`
	StartHour int    `json:"startHour"`
}

// DefaultSlots is the appointment window vocabulary.
var DefaultSlots = []Slot{
	{Label: "9am", Display: "9:00 AM - 11:00 AM", StartHour: 9},
	{Label: "11am", Display: "11:00 AM - 1:00 PM", StartHour: 11},
	{Label: "2pm", Display: "2:00 PM - 4:00 PM", StartHour: 14},
	{Label: "4pm", Display: "4:00 PM - 6:00 PM", StartHour: 16},
	{Label: "6pm", Display: "6:00 PM - 8:00 PM", StartHour: 18},
}

// SchedulePolicy configures the schedule collector for a category.
type SchedulePolicy struct {
	TimeMode        TimeMode `json:"timeMode"`
	AddressRequired bool     `json:"addressRequired"`
	Slots           []Slot   `json:"slots,omitempty"`
}

// FindSlot looks up an enumerated slot by label. Placeholder and blank
// labels never match.
func (p SchedulePolicy) FindSlot(label string) (Slot, bool) {
	label = strings.TrimSpace(label)
	if label == "" || label == SlotPlaceholder {
		return Slot{}, false
	}
	for _, s := range p.Slots {
		if s.Label == label {
			return s, true
		}
	}
	return Slot{}, false
}

// Category groups a catalog with its scheduling policy.
type Category struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Tagline string         `json:"tagline"`
	Policy  SchedulePolicy `json:"policy"`
}
