package ebm

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// EarthRadius in meters.
const EarthRadius = 6.371e6

// Anchor selects where zonal values live on the latitude grid.
type Anchor int

const (
	// AnchorCircle puts values on the grid boundary latitudes (0°, 10°, ...).
	AnchorCircle Anchor = iota
	// AnchorBelt puts values on the midpoints between boundaries (5°, 15°, ...).
	AnchorBelt
)

// Grid is the fixed latitude layout of a run. Lats holds the anchor
// latitudes the temperature field is defined on; Mids holds the
// complementary latitudes (belt boundaries for a belt-anchored grid, belt
// centres for a circle-anchored one). A zero-resolution grid is the
// 0-dimensional model: Lats is nil and the field has length 1.
type Grid struct {
	Resolution      float64
	BothHemispheres bool
	Anchor          Anchor
	Radius          float64

	Lats Field
	Mids Field

	weights   Field // cos(lat) per anchor
	circleLen Field // circumference at each Mids latitude
	beltArea  Field // surface area of each anchor band
}

// NewGrid builds the latitude layout once per run; the arrays are never
// resized or rewritten afterwards.
func NewGrid(resolution float64, bothHemispheres bool, anchor Anchor) (*Grid, error) {
	g := &Grid{
		Resolution:      resolution,
		BothHemispheres: bothHemispheres,
		Anchor:          anchor,
		Radius:          EarthRadius,
	}
	if resolution == 0 {
		return g, nil
	}
	if resolution < 0 || math.Mod(180, resolution) != 0 {
		return nil, ConfigError{Field: "resolution", Message: "must divide 180 evenly"}
	}

	span := 90.0
	if bothHemispheres {
		span = 180.0
	}
	n := int(span / resolution)

	switch {
	case bothHemispheres && anchor == AnchorBelt:
		g.Lats = latRange(-90+resolution/2, resolution, n)
		g.Mids = latRange(-90+resolution, resolution, n-1)
	case bothHemispheres && anchor == AnchorCircle:
		g.Lats = latRange(-90+resolution, resolution, n-1)
		g.Mids = latRange(-90+resolution/2, resolution, n)
	case anchor == AnchorBelt:
		g.Lats = latRange(resolution/2, resolution, n)
		g.Mids = latRange(resolution, resolution, n-1)
	default:
		g.Lats = latRange(0, resolution, n)
		g.Mids = latRange(resolution/2, resolution, n)
	}

	g.weights = make(Field, len(g.Lats))
	for i, lat := range g.Lats {
		g.weights[i] = Cosd(lat)
	}
	g.circleLen = make(Field, len(g.Mids))
	for i, lat := range g.Mids {
		g.circleLen[i] = 2 * math.Pi * g.Radius * Cosd(lat)
	}
	g.beltArea = g.areas()
	return g, nil
}

func latRange(start, step float64, n int) Field {
	f := make(Field, n)
	for i := range f {
		f[i] = start + float64(i)*step
	}
	return f
}

// Size is the length of the temperature field on this grid.
func (g *Grid) Size() int {
	if g.Lats == nil {
		return 1
	}
	return len(g.Lats)
}

// GlobalMean is the cosine-latitude-weighted mean of a zonal field; for
// the 0-dimensional model it is the field value itself.
func (g *Grid) GlobalMean(t Field) float64 {
	if g.Lats == nil {
		return t[0]
	}
	return stat.Mean(t, g.weights)
}

// CircleLength returns the circumference of the latitude circle at each
// Mids latitude.
func (g *Grid) CircleLength() Field { return g.circleLen }

// BeltArea returns the surface area of the band around each anchor
// latitude, bounded by the Mids latitudes (extended to the poles).
func (g *Grid) BeltArea() Field { return g.beltArea }

func (g *Grid) areas() Field {
	south := make(Field, 0, len(g.Mids)+1)
	north := make(Field, 0, len(g.Mids)+1)
	lo, hi := -90.0, 90.0
	if !g.BothHemispheres {
		lo = 0
	}
	south = append(south, lo)
	south = append(south, g.Mids...)
	north = append(north, g.Mids...)
	north = append(north, hi)

	area := make(Field, len(south))
	for i := range area {
		// Difference of two polar caps.
		area[i] = 2 * math.Pi * g.Radius * g.Radius *
			(Cosd(90-north[i]) - Cosd(90-south[i]))
	}
	return area
}

// Cosd and Sind take degrees.
func Cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func Sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
