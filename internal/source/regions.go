package source

import (
	"github.com/twpayne/go-geom"

	"github.com/terrapulse/vitals-cli/internal/model"
)

// Region is a named site with the bounding box used to parameterize area
// queries against the external sources.
type Region struct {
	Name   string
	Bounds *geom.Bounds
}

func bbox(west, south, east, north float64) *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(west, south, east, north)
}

// West/South/East/North unpack the bounds in the order the source clients
// take them.
func (r Region) West() float64  { return r.Bounds.Min(0) }
func (r Region) South() float64 { return r.Bounds.Min(1) }
func (r Region) East() float64  { return r.Bounds.Max(0) }
func (r Region) North() float64 { return r.Bounds.Max(1) }

// knownRegions maps normalized locators to monitoring sites.
var knownRegions = map[string]Region{
	"amazonia":           {Name: "Amazon Basin", Bounds: bbox(-73.0, -12.0, -50.0, 2.0)},
	"amazon":             {Name: "Amazon Basin", Bounds: bbox(-73.0, -12.0, -50.0, 2.0)},
	"congo basin":        {Name: "Congo Basin", Bounds: bbox(12.0, -6.0, 28.0, 4.0)},
	"borneo":             {Name: "Borneo", Bounds: bbox(109.0, -4.5, 119.5, 7.5)},
	"great barrier reef": {Name: "Great Barrier Reef", Bounds: bbox(142.5, -24.5, 154.0, -10.5)},
	"coral triangle":     {Name: "Coral Triangle", Bounds: bbox(117.0, -10.0, 155.0, 7.0)},
	"sao paulo":          {Name: "São Paulo", Bounds: bbox(-47.1, -24.1, -46.1, -23.2)},
	"delhi":              {Name: "Delhi", Bounds: bbox(76.8, 28.3, 77.5, 28.9)},
	"jakarta":            {Name: "Jakarta", Bounds: bbox(106.6, -6.4, 107.1, -6.0)},
}

// defaultRegions gives each organ a fallback site so an unrecognized locator
// degrades to a sensible default instead of an error.
var defaultRegions = map[model.Organ]Region{
	model.OrganLungs: {Name: "Amazon Basin", Bounds: bbox(-73.0, -12.0, -50.0, 2.0)},
	model.OrganHeart: {Name: "Great Barrier Reef", Bounds: bbox(142.5, -24.5, 154.0, -10.5)},
	model.OrganSkin:  {Name: "Delhi", Bounds: bbox(76.8, 28.3, 77.5, 28.9)},
}

// RegionFor resolves a locator against the known-site table, falling back to
// the organ's default region.
func RegionFor(organ model.Organ, locator string) Region {
	if r, ok := knownRegions[model.NormalizeLocator(locator)]; ok {
		return r
	}
	return defaultRegions[organ]
}
