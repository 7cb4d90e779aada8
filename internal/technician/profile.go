package technician

import (
	"fmt"
	"strings"
)

// Availability is the technician's booking status.
type Availability string

const (
	Available   Availability = "Available"
	Unavailable Availability = "Unavailable"
)

// Normalize maps the empty value to Available.
func (a Availability) Normalize() Availability {
	if a == "" {
		return Available
	}
	return a
}

// Valid reports whether a is a known status.
func (a Availability) Valid() bool {
	switch a.Normalize() {
	case Available, Unavailable:
		return true
	}
	return false
}

// Profile is a technician record. JSON names follow the backend wire format.
type Profile struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	IDProof      string       `json:"idProof"`
	Skills       []string     `json:"skills"`
	Availability Availability `json:"availability"`
	ProfileImg   string       `json:"profileImg"`
}

// ToggleAvailability flips between Available and Unavailable.
func (p *Profile) ToggleAvailability() Availability {
	if p.Availability.Normalize() == Available {
		p.Availability = Unavailable
	} else {
		p.Availability = Available
	}
	return p.Availability
}

// AddSkill appends a non-blank skill.
func (p *Profile) AddSkill(skill string) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return
	}
	p.Skills = append(p.Skills, skill)
}

// SetSkill replaces the skill at i.
func (p *Profile) SetSkill(i int, skill string) error {
	if i < 0 || i >= len(p.Skills) {
		return fmt.Errorf("%w: %d", ErrSkillIndex, i)
	}
	p.Skills[i] = skill
	return nil
}

// RemoveSkill deletes the skill at i.
func (p *Profile) RemoveSkill(i int) error {
	if i < 0 || i >= len(p.Skills) {
		return fmt.Errorf("%w: %d", ErrSkillIndex, i)
	}
	p.Skills = append(p.Skills[:i], p.Skills[i+1:]...)
	return nil
}

// Clean trims blank skills and normalises availability before saving.
func (p *Profile) Clean() error {
	skills := p.Skills[:0]
	for _, s := range p.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	p.Skills = skills
	if !p.Availability.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAvailable, p.Availability)
	}
	p.Availability = p.Availability.Normalize()
	return nil
}
