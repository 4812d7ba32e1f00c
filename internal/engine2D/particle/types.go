package particle

import (
	"context"
	"image"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/engine2D/frame"

	"github.com/ojrac/opensimplex-go"
)

// Sprite is an uploaded particle image.
type Sprite interface {
	Width() float64
	Height() float64
}

// Canvas is the drawing surface the simulation owns for one dataset.
// DrawSprite paints s with its pivot at the centre of the destination
// rectangle, rotated by rotation degrees.
type Canvas interface {
	Size() (width, height float64)
	Resize(width, height float64)
	Clear()
	Upload(img image.Image) Sprite
	Free(s Sprite)
	DrawSprite(s Sprite, x, y, width, height, rotation, opacity float64)
}

// Decoder loads one configured source. It runs off the render loop.
type Decoder func(ctx context.Context, src string) (image.Image, error)

type Particle struct {
	Sprite        Sprite
	X, Y          float64
	Speed         float64
	Drift         float64
	Scale         float64
	Opacity       float64
	Rotation      float64
	RotationSpeed float64
	Width         float64
	Height        float64
	SwayPhase     float64
}

type Options struct {
	Config banner.ParticleConfig
	Canvas Canvas
	Frames *frame.Scheduler
	Decode Decoder

	// Rand is the single uniform [0, 1) source every random draw uses.
	Rand func() float64
}

type Simulation struct {
	config banner.ParticleConfig
	canvas Canvas
	frames *frame.Scheduler
	decode Decoder
	rand   func() float64
	noise  opensimplex.Noise

	width, height float64

	sprites   []Sprite
	particles []*Particle
	handle    frame.Handle
	ticks     uint64
	disposed  bool
}
