package banner

import "fmt"

// Kind selects the media element a layer is rendered with.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is a [min, max] pair as written in descriptor JSON.
type Range [2]float64

// Lerp maps t in [0, 1] onto the range.
func (r Range) Lerp(t float64) float64 {
	return r[0] + (r[1]-r[0])*t
}

// Layer is one visual layer of a parallax banner.
type Layer struct {
	Src    string
	Kind   Kind
	Width  float64
	Height float64

	// Transform is the authored resting matrix [a b c d tx ty].
	Transform [6]float64

	Accel   float64
	Gravity float64

	// Optional coefficients; nil means absent.
	ScaleCoef    *float64
	RotationCoef *float64
	OpacityRange *Range

	// Blur is a static blur radius in pixels.
	Blur float64
}

// ParticleConfig describes the decorative sprite overlay.
type ParticleConfig struct {
	Srcs         []string `json:"srcs"`
	Count        int      `json:"count"`
	SpeedRange   Range    `json:"speedRange"`
	AngleRange   Range    `json:"angleRange"`
	SizeRange    Range    `json:"sizeRange"`
	OpacityRange Range    `json:"opacityRange"`

	RotationSpeedRange *Range  `json:"rotationSpeedRange,omitempty"`
	Sway               float64 `json:"sway,omitempty"`
}

// Mode discriminates Descriptor.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeSimpleVideo
	ModeParallax
)

func (m Mode) String() string {
	switch m {
	case ModeSimpleVideo:
		return "simple-video"
	case ModeParallax:
		return "parallax"
	}
	return "unknown"
}

// Descriptor is the normalized banner handed to the engine: either a single
// fixed video, or an ordered layer stack with an optional particle overlay.
type Descriptor struct {
	Mode Mode

	// ModeSimpleVideo
	Video string

	// ModeParallax
	Layers    []Layer
	Particles *ParticleConfig

	// Name is informational, usually the source file name.
	Name string
}

func SimpleVideo(src string) Descriptor {
	return Descriptor{Mode: ModeSimpleVideo, Video: src}
}

func Parallax(layers []Layer, particles *ParticleConfig) Descriptor {
	return Descriptor{Mode: ModeParallax, Layers: layers, Particles: particles}
}
