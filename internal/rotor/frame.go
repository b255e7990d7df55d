package rotor

import "fmt"

// Transform is the render instruction for one panel.
type Transform struct {
	Index      int     `json:"index"`
	ImageURL   string  `json:"imageUrl"`
	URL        string  `json:"url"`
	RotateY    float64 `json:"rotateY"`
	TranslateZ float64 `json:"translateZ"`
	ZIndex     int     `json:"zIndex"`
	CSS        string  `json:"transform"`
}

// Frame is everything a renderer needs to draw the ring once.
type Frame struct {
	Angle float64     `json:"angle"`
	Mode  Mode        `json:"mode"`
	Tilt  Tilt        `json:"tilt"`
	Items []Transform `json:"items"`
}

// Frame computes the transform and stacking order of every panel at the
// current angle.
func (r *Rotor) Frame() Frame {
	n := len(r.items)
	angle := r.state.Angle

	items := make([]Transform, n)
	for i, it := range r.items {
		rotateY := ItemAngle(i, n, angle)
		items[i] = Transform{
			Index:      i,
			ImageURL:   it.ImageURL,
			URL:        it.URL,
			RotateY:    rotateY,
			TranslateZ: r.cfg.Radius,
			ZIndex:     ZOrder(i, n, angle),
			CSS:        fmt.Sprintf("rotateY(%.3fdeg) translateZ(%.0fpx)", rotateY, r.cfg.Radius),
		}
	}

	return Frame{
		Angle: angle,
		Mode:  r.state.Mode,
		Tilt:  r.cfg.Tilt,
		Items: items,
	}
}
