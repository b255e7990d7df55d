package rotor

// Tilt is the camera tilt applied to the whole ring, in degrees.
type Tilt struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Config controls ring geometry and interaction.
type Config struct {
	SpeedSeconds float64 `json:"speedSeconds" yaml:"speed_seconds"` // seconds per full revolution
	Radius       float64 `json:"radius" yaml:"radius"`              // pixels
	SlowOnHover  bool    `json:"slowOnHover" yaml:"slow_on_hover"`
	DragEnabled  bool    `json:"dragEnabled" yaml:"drag_enabled"`
	Tilt         Tilt    `json:"tilt" yaml:"tilt"`
}

const (
	DefaultSpeedSeconds = 30
	DefaultRadius       = 480
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SpeedSeconds: DefaultSpeedSeconds,
		Radius:       DefaultRadius,
		SlowOnHover:  true,
		DragEnabled:  true,
		Tilt:         Tilt{X: -12, Y: 0, Z: 4},
	}
}

func (c Config) withDefaults() Config {
	if !(c.SpeedSeconds > 0) {
		c.SpeedSeconds = DefaultSpeedSeconds
	}
	if !(c.Radius > 0) {
		c.Radius = DefaultRadius
	}
	return c
}

// PlaceholderItems is the built-in gallery shown when no work items are available.
func PlaceholderItems() []Item {
	return []Item{
		{ImageURL: "https://picsum.photos/seed/rotor-1/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-2/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-3/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-4/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-5/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-6/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-7/600/400", URL: "#work"},
		{ImageURL: "https://picsum.photos/seed/rotor-8/600/400", URL: "#work"},
	}
}
