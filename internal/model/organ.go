// Package model defines the core domain types: planetary organs, metric
// snapshots, and diagnosis results.
package model

import "github.com/rotisserie/eris"

// Organ identifies one of the planetary systems the diagnostic core knows
// how to examine.
type Organ string

const (
	// OrganLungs covers rainforest health (wildfire and deforestation pressure).
	OrganLungs Organ = "lungs"
	// OrganHeart covers ocean chemistry (acidification and surface temperature).
	OrganHeart Organ = "heart"
	// OrganSkin covers atmospheric air quality.
	OrganSkin Organ = "skin"
)

// AllOrgans returns the fixed set of diagnosable organs in display order.
func AllOrgans() []Organ {
	return []Organ{OrganLungs, OrganHeart, OrganSkin}
}

// ErrUnknownOrgan is returned when a caller names an organ outside the fixed
// enumeration. This is the only hard error the diagnostic core surfaces.
var ErrUnknownOrgan = eris.New("unknown organ")

// ParseOrgan validates a caller-supplied organ name.
func ParseOrgan(s string) (Organ, error) {
	switch Organ(s) {
	case OrganLungs, OrganHeart, OrganSkin:
		return Organ(s), nil
	default:
		return "", eris.Wrapf(ErrUnknownOrgan, "%q", s)
	}
}

// Domain returns the environmental domain an organ maps to, for prompts and
// human-readable output.
func (o Organ) Domain() string {
	switch o {
	case OrganLungs:
		return "rainforest (wildfire and deforestation)"
	case OrganHeart:
		return "ocean chemistry"
	case OrganSkin:
		return "air quality"
	default:
		return string(o)
	}
}

func (o Organ) String() string { return string(o) }
