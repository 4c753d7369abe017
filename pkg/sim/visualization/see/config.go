package see

import "flag"

// Config describes the visualized area. Sizes are in the same unit as
// object positions, the origin is the center.
type Config struct {
	W float64
	H float64
	// Corners draws markers at the four corners so the viewer scales the
	// area correctly before any object shows up.
	Corners bool
}

var defaultConfig = Config{W: 200, H: 200, Corners: true}

// SetupFlags registers flags on defaults.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.W, "see-w", defaultConfig.W, "Width of the visualized area")
	flag.Float64Var(&defaultConfig.H, "see-h", defaultConfig.H, "Height of the visualized area")
	flag.BoolVar(&defaultConfig.Corners, "see-corners", defaultConfig.Corners, "Mark corners of the visualized area")
}

// Default returns the config flags are bound to.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the defaults.
func NewConfig() *Config {
	c := defaultConfig
	return &c
}

// NewAdapter creates an Adapter using c.
func (c *Config) NewAdapter() *Adapter {
	return NewAdapter(c)
}

func (c *Config) cornerObjects() []Object {
	if !c.Corners {
		return nil
	}
	x, y := c.W/2, c.H/2
	corners := []struct {
		loc  string
		x, y float64
	}{
		{"lt", -x, -y},
		{"lb", -x, y},
		{"rt", x, -y},
		{"rb", x, y},
	}
	objs := make([]Object, 0, len(corners))
	for _, corner := range corners {
		objs = append(objs, NewObject("corner", "corner-"+corner.loc).
			With("loc", corner.loc).
			At(corner.x, corner.y).
			Radius(1))
	}
	return objs
}
