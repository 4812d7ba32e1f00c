package debug

import (
	"parallax-banner/internal/engine2D"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// LayerCorners returns the four window-space corners of a layer of size
// w x h centred at (cx, cy) after transform m.
func LayerCorners(m engine2D.Matrix, cx, cy, w, h float64) [4]rl.Vector2 {
	local := [4][2]float64{{-w / 2, -h / 2}, {w / 2, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}}
	var out [4]rl.Vector2
	for i, p := range local {
		x, y := m.Apply(p[0], p[1])
		out[i] = rl.NewVector2(float32(cx+x), float32(cy+y))
	}
	return out
}

func (d *DebugOverlay) drawLayerBoundingBoxes(snap Snapshot) {
	cx := float64(snap.Bounds.X + snap.Bounds.Width/2)
	cy := float64(snap.Bounds.Y + snap.Bounds.Height/2)

	for _, el := range snap.Elements {
		col := rl.NewColor(0, 255, 0, 255)
		if el.Video {
			col = rl.NewColor(0, 255, 255, 255)
		}
		c := LayerCorners(el.Transform, cx, cy, el.Width, el.Height)
		for i := range c {
			rl.DrawLineV(c[i], c[(i+1)%4], col)
		}

		// Draw origin point as a small red rectangle
		ox, oy := el.Transform.Apply(0, 0)
		rl.DrawRectangle(int32(cx+ox-2), int32(cy+oy-2), 4, 4, rl.Red)
	}

	rl.DrawRectangleLinesEx(snap.Bounds, 1, rl.NewColor(255, 255, 0, 150))
}
