package engine2D

import (
	"math"
	"testing"

	"parallax-banner/internal/banner"
)

func f64(v float64) *float64 { return &v }

func TestCompensation(t *testing.T) {
	tests := []struct {
		name     string
		viewport float64
		want     float64
	}{
		{"narrow", 1000, 1},
		{"reference", 1650, 1},
		{"double", 3300, 2},
		{"wide", 2475, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compensation(tt.viewport, BaseWidth); got != tt.want {
				t.Errorf("Compensation(%v) = %v, want %v", tt.viewport, got, tt.want)
			}
		})
	}
}

func TestNewLayerStateCompensatesTranslationOnly(t *testing.T) {
	layer := banner.Layer{
		Width: 300, Height: 100,
		Transform: [6]float64{1.2, 0.1, 0.2, 0.9, 100, 50},
		Accel:     0.05, Gravity: 0.01,
	}
	st := NewLayerState(layer, 2)

	if st.Base.TX != 200 || st.Base.TY != 100 {
		t.Errorf("translation: got (%v, %v), want (200, 100)", st.Base.TX, st.Base.TY)
	}
	if st.Base.A != 1.2 || st.Base.B != 0.1 || st.Base.C != 0.2 || st.Base.D != 0.9 {
		t.Errorf("linear part changed: %+v", st.Base)
	}
	if st.Accel != 0.05 || st.Gravity != 0.01 {
		t.Errorf("coefficients should be copied unchanged: %v %v", st.Accel, st.Gravity)
	}
	if st.Width != 600 || st.Height != 200 {
		t.Errorf("size: got %vx%v, want 600x200", st.Width, st.Height)
	}
}

func TestLayerTransformScenario(t *testing.T) {
	st := NewLayerState(banner.Layer{
		Width: 10, Height: 10,
		Transform: [6]float64{1, 0, 0, 1, 100, 50},
		Accel:     0.05,
	}, 1)

	m := st.Transform(200)
	if m.TX != 110 || m.TY != 50 {
		t.Errorf("translation: got (%v, %v), want (110, 50)", m.TX, m.TY)
	}
}

func TestLayerTranslationIsLinear(t *testing.T) {
	st := NewLayerState(banner.Layer{
		Width: 10, Height: 10,
		Transform: [6]float64{1, 0, 0, 1, -40, 12},
		Accel:     -0.3, Gravity: 0.02,
	}, 1)

	for _, m := range []float64{-5000, -200, -1, 0, 0.5, 73, 10000} {
		got := st.Transform(m)
		if got.TX != m*-0.3+(-40) {
			t.Errorf("m=%v: TX=%v, want %v", m, got.TX, m*-0.3-40)
		}
		if !near(got.TY, m*0.02+12) {
			t.Errorf("m=%v: TY=%v, want %v", m, got.TY, m*0.02+12)
		}
	}
}

func TestLayerScaleAndRotation(t *testing.T) {
	layer := banner.Layer{
		Width: 10, Height: 10,
		Transform:    [6]float64{1, 0, 0, 1, 0, 0},
		ScaleCoef:    f64(0.001),
		RotationCoef: f64(0.0005),
	}
	st := NewLayerState(layer, 1)

	got := st.Transform(100)
	want := ScaleTranslate(1.1, 0, 0).Rotate(0.05 * 180 / math.Pi)
	if !near(got.A, want.A) || !near(got.B, want.B) || !near(got.C, want.C) || !near(got.D, want.D) {
		t.Errorf("Transform(100) = %+v, want %+v", got, want)
	}

	// Zero coefficients behave as absent.
	layer.ScaleCoef = f64(0)
	layer.RotationCoef = f64(0)
	st = NewLayerState(layer, 1)
	if got := st.Transform(100); got != Identity() {
		t.Errorf("zero coefficients: got %+v, want identity", got)
	}
}

func TestLayerOpacity(t *testing.T) {
	st := NewLayerState(banner.Layer{
		Width: 10, Height: 10,
		Transform:    [6]float64{1, 0, 0, 1, 0, 0},
		OpacityRange: &banner.Range{0.2, 0.8},
	}, 1)

	tests := []struct {
		name     string
		offset   float64
		homing   bool
		progress float64
		want     float64
	}{
		{"scenario", 250, false, 0, 0.5},
		{"rest", 0, false, 0, 0.2},
		{"clamped high", 5000, false, 0, 0.8},
		{"clamped low", -250, false, 0, 0.2},
		{"homing positive start", 250, true, 0, 0.8},
		{"homing positive end", 250, true, 1, 0.2},
		{"homing negative ignores progress", -250, true, 0.5, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := st.Opacity(tt.offset, 1000, tt.homing, tt.progress)
			if !ok {
				t.Fatal("opacity range present but not reported")
			}
			if !near(got, tt.want) {
				t.Errorf("Opacity = %v, want %v", got, tt.want)
			}
		})
	}

	plain := NewLayerState(banner.Layer{Width: 1, Height: 1}, 1)
	if _, ok := plain.Opacity(100, 1000, false, 0); ok {
		t.Error("layer without opacity range reported opacity")
	}
}
