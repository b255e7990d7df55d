// Package rotor models the rotating work gallery: N panels laid out on a ring
// that turns on its own, slows down under the pointer and follows drags.
//
// A Rotor is not safe for concurrent use. Run it through a Runner when events
// arrive from more than one goroutine.
package rotor

import (
	"fmt"
	"math"
)

const (
	// HoverFactor scales auto-rotation while the pointer is over the gallery.
	HoverFactor = 0.35
	// Sensitivity converts pointer travel (pixels) into ring rotation (degrees).
	Sensitivity = 0.4
)

// Mode is the state of the rotation state machine.
type Mode int

const (
	ModeAuto Mode = iota
	ModeDragging
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeDragging:
		return "dragging"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText lets frames carry the mode as "auto" / "dragging".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "auto":
		*m = ModeAuto
	case "dragging":
		*m = ModeDragging
	default:
		return fmt.Errorf("unknown rotor mode %q", text)
	}
	return nil
}

// Item is one gallery panel.
type Item struct {
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
}

// Point is a pointer position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the mutable rotation state.
type State struct {
	Angle          float64
	Mode           Mode
	Hovering       bool
	LastPointer    Point
	DragStart      Point
	DragStartAngle float64
}

// Rotor is the gallery state machine. The zero value is not usable; call New.
type Rotor struct {
	cfg   Config
	items []Item
	state State
}

// New builds a rotor in ModeAuto at angle 0. An empty item list is replaced by
// PlaceholderItems.
func New(items []Item, cfg Config) *Rotor {
	r := &Rotor{cfg: cfg.withDefaults()}
	r.SetItems(items)
	return r
}

// SetItems replaces the panels, keeping the current angle.
func (r *Rotor) SetItems(items []Item) {
	if len(items) == 0 {
		r.items = PlaceholderItems()
		return
	}
	r.items = append([]Item(nil), items...)
}

// Items returns a copy of the current panels.
func (r *Rotor) Items() []Item {
	return append([]Item(nil), r.items...)
}

// Config returns the effective configuration.
func (r *Rotor) Config() Config {
	return r.cfg
}

// State returns a copy of the rotation state.
func (r *Rotor) State() State {
	return r.state
}

// Angle returns the current ring angle in degrees, always in [0, 360).
func (r *Rotor) Angle() float64 {
	return r.state.Angle
}

// Mode returns the current state machine mode.
func (r *Rotor) Mode() Mode {
	return r.state.Mode
}

// Tick advances auto-rotation by deltaMs milliseconds. It does nothing while a
// drag is in progress.
func (r *Rotor) Tick(deltaMs float64) {
	if r.state.Mode == ModeDragging {
		return
	}
	if !(deltaMs > 0) || math.IsInf(deltaMs, 0) {
		return
	}

	factor := 1.0
	if r.state.Hovering && r.cfg.SlowOnHover {
		factor = HoverFactor
	}

	step := 360 / r.cfg.SpeedSeconds * deltaMs / 1000 * factor
	r.state.Angle = Normalize(r.state.Angle + step)
}

// SetHover records whether the pointer is over the gallery.
func (r *Rotor) SetHover(hovering bool) {
	r.state.Hovering = hovering
}

// PointerDown starts a drag unless dragging is disabled or the press landed on
// an item link.
func (r *Rotor) PointerDown(x, y float64, onLink bool) {
	r.state.LastPointer = Point{X: x, Y: y}
	if !r.cfg.DragEnabled || onLink {
		return
	}

	r.state.DragStart = Point{X: x, Y: y}
	r.state.DragStartAngle = r.state.Angle
	r.state.Mode = ModeDragging
}

// PointerMove rotates the ring to follow the pointer while dragging.
// Horizontal and vertical travel both feed the same rotation axis.
func (r *Rotor) PointerMove(x, y float64) {
	r.state.LastPointer = Point{X: x, Y: y}
	if r.state.Mode != ModeDragging {
		return
	}

	delta := (r.state.DragStart.X - x) + (y - r.state.DragStart.Y)
	r.state.Angle = Normalize(r.state.DragStartAngle + delta*Sensitivity)
}

// PointerUp ends a drag. Auto-rotation resumes from the angle reached.
func (r *Rotor) PointerUp() {
	r.state.Mode = ModeAuto
}

// PointerLeave ends a drag and clears hover.
func (r *Rotor) PointerLeave() {
	r.state.Mode = ModeAuto
	r.state.Hovering = false
}

// Normalize maps any angle into [0, 360).
func Normalize(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// -tiny + 360 rounds to 360
	if a >= 360 {
		a = 0
	}
	return a
}

// ItemAngle is the on-screen angular position of panel index out of n.
func ItemAngle(index, n int, angle float64) float64 {
	return float64(index)/float64(n)*360 - angle
}

// ZOrder is the stacking order of panel index: panels within 180 degrees of
// the front rank n-index, the rest rank index. Higher renders on top.
func ZOrder(index, n int, angle float64) int {
	if Normalize(ItemAngle(index, n, angle)) <= 180 {
		return n - index
	}
	return index
}
