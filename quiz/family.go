package quiz

import "fmt"

// Family is a coarse hue group used to build matching sets.
type Family string

const (
	FamilyAny    Family = ""
	FamilyRed    Family = "red"
	FamilyBlue   Family = "blue"
	FamilyRandom Family = "random"
)

func ParseFamily(s string) (Family, error) {
	switch f := Family(s); f {
	case FamilyAny, FamilyRed, FamilyBlue, FamilyRandom:
		return f, nil
	default:
		return "", fmt.Errorf("unknown color family %q", s)
	}
}

// Contains applies the channel thresholds of the family to c.
// FamilyAny and FamilyRandom contain every color.
func (f Family) Contains(c Color) bool {
	switch f {
	case FamilyRed:
		return c.R > 150 && c.G < 100 && c.B < 100
	case FamilyBlue:
		return c.B > 150 && c.R < 100
	default:
		return true
	}
}

// Title is the display name of the family.
func (f Family) Title() string {
	switch f {
	case FamilyRed:
		return "Red"
	case FamilyBlue:
		return "Blue"
	default:
		return "Random"
	}
}
