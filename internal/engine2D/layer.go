package engine2D

import (
	"math"

	"parallax-banner/internal/banner"
)

// BaseWidth is the viewport width banner layouts are authored at.
const BaseWidth = 1650.0

// Compensation scales authored translations up on viewports wider than
// baseWidth. It never shrinks below 1.
func Compensation(viewportWidth, baseWidth float64) float64 {
	if baseWidth <= 0 {
		baseWidth = BaseWidth
	}
	return math.Max(1, viewportWidth/baseWidth)
}

// LayerState is the precomputed, compensated form of a banner.Layer. It is
// rebuilt on data load and resize and read-only in between.
type LayerState struct {
	Layer banner.Layer

	Base    Matrix
	Accel   float64
	Gravity float64
	Width   float64
	Height  float64
}

func NewLayerState(layer banner.Layer, comp float64) LayerState {
	base := MatrixFromArray(layer.Transform)
	base.TX *= comp
	base.TY *= comp

	// Coefficients are deliberately left uncompensated.
	return LayerState{
		Layer:   layer,
		Base:    base,
		Accel:   layer.Accel,
		Gravity: layer.Gravity,
		Width:   layer.Width * comp,
		Height:  layer.Height * comp,
	}
}

// Transform is the layer's matrix for the effective offset m.
func (l *LayerState) Transform(m float64) Matrix {
	move := m * l.Accel
	scale := 1.0
	if l.Layer.ScaleCoef != nil && *l.Layer.ScaleCoef != 0 {
		scale = *l.Layer.ScaleCoef*m + 1
	}
	vertical := m * l.Gravity

	out := l.Base.Multiply(ScaleTranslate(scale, move, vertical))
	if l.Layer.RotationCoef != nil && *l.Layer.RotationCoef != 0 {
		out = out.Rotate(*l.Layer.RotationCoef * m * 180 / math.Pi)
	}
	return out
}

// Opacity returns the layer opacity and whether the layer animates it.
// While homing, a positive offset fades back from the extreme bound using
// the homing progress; every other case interpolates on the live offset.
func (l *LayerState) Opacity(offset, viewportWidth float64, homing bool, progress float64) (float64, bool) {
	r := l.Layer.OpacityRange
	if r == nil {
		return 1, false
	}

	if homing && offset > 0 {
		return Lerp(r[1], r[0], progress), true
	}

	t := 0.0
	if viewportWidth > 0 {
		t = Clamp01(offset / viewportWidth * 2)
	}
	return Lerp(r[0], r[1], t), true
}
