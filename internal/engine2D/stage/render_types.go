package stage

import (
	"context"
	"image"
	"image/color"

	"parallax-banner/internal/convert"
	"parallax-banner/internal/engine2D"
	"parallax-banner/internal/engine2D/particle"
	"parallax-banner/internal/input"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Stage is the raylib-backed Container: a rectangle of the window holding
// the mounted layers and particle canvases, drawn in mount order.
type Stage struct {
	Rect    rl.Rectangle
	BgColor color.RGBA

	viewportWidth float64
	events        *input.Dispatcher
	elements      []stageElement
	canvases      []*Canvas
	suspended     bool

	decodeImage func(path string) (image.Image, error)
	openVideo   func(ctx context.Context, src string, loop bool) (*convert.Video, error)
}

// stageElement is a mounted layer the stage knows how to draw and release.
type stageElement interface {
	engine2D.Element
	draw(cx, cy float32)
	release()
	describe() ElementInfo
}

// ElementInfo is a read-only summary for the debug overlay.
type ElementInfo struct {
	Src       string
	Video     bool
	Width     float64
	Height    float64
	Opacity   float64
	Transform engine2D.Matrix
}

type layerBase struct {
	src       string
	width     float64
	height    float64
	transform engine2D.Matrix
	opacity   float64
}

func (l *layerBase) SetSize(w, h float64)           { l.width, l.height = w, h }
func (l *layerBase) SetTransform(m engine2D.Matrix) { l.transform = m }
func (l *layerBase) SetOpacity(opacity float64)     { l.opacity = opacity }

type imageLayer struct {
	layerBase
	texture *rl.Texture2D
}

type videoLayer struct {
	layerBase
	video   *convert.Video
	texture *rl.Texture2D
	// held layers were created without autoplay and never resume.
	held   bool
	paused bool
}

// Canvas is a particle.Canvas that records draw calls and replays them when
// the stage is drawn.
type Canvas struct {
	width, height float64
	commands      []spriteCommand
	sprites       map[*sprite]struct{}
}

type sprite struct {
	texture rl.Texture2D
}

func (s *sprite) Width() float64  { return float64(s.texture.Width) }
func (s *sprite) Height() float64 { return float64(s.texture.Height) }

type spriteCommand struct {
	sprite   *sprite
	dest     rl.Rectangle
	rotation float32
	tint     rl.Color
}

var _ engine2D.Container = (*Stage)(nil)
var _ engine2D.MediaFactory = (*Stage)(nil)
var _ particle.Canvas = (*Canvas)(nil)
