package stage

import (
	"context"
	"fmt"
	"image/color"

	"parallax-banner/internal/convert"
	"parallax-banner/internal/engine2D"
	"parallax-banner/internal/engine2D/particle"
	"parallax-banner/internal/input"
	"parallax-banner/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func NewStage(events *input.Dispatcher) *Stage {
	return &Stage{
		BgColor:     color.RGBA{0, 0, 0, 255},
		events:      events,
		decodeImage: convert.DecodeImage,
		openVideo:   convert.OpenVideo,
	}
}

// UpdateViewport places the banner strip in a screenWidth x screenHeight
// window. bannerHeight <= 0 fills the window; otherwise the strip is
// centred vertically.
func (s *Stage) UpdateViewport(screenWidth, screenHeight, bannerHeight int) {
	h := screenHeight
	if bannerHeight > 0 && bannerHeight < screenHeight {
		h = bannerHeight
	}
	s.Rect = rl.NewRectangle(0, float32(screenHeight-h)/2, float32(screenWidth), float32(h))
	s.viewportWidth = float64(screenWidth)

	for _, c := range s.canvases {
		c.Resize(float64(s.Rect.Width), float64(s.Rect.Height))
	}
}

// Bounds is the container rectangle in window coordinates.
func (s *Stage) Bounds() input.Rect {
	return input.Rect{X: float64(s.Rect.X), Y: float64(s.Rect.Y), Width: float64(s.Rect.Width), Height: float64(s.Rect.Height)}
}

func (s *Stage) Size() (float64, float64) {
	return float64(s.Rect.Width), float64(s.Rect.Height)
}

func (s *Stage) ViewportWidth() float64 { return s.viewportWidth }

func (s *Stage) Events() *input.Dispatcher { return s.events }

func (s *Stage) Append(el engine2D.Element) {
	se, ok := el.(stageElement)
	if !ok {
		utils.Warn("Stage: cannot mount foreign element %T", el)
		return
	}
	s.elements = append(s.elements, se)
}

func (s *Stage) NewCanvas() particle.Canvas {
	c := &Canvas{
		width:   float64(s.Rect.Width),
		height:  float64(s.Rect.Height),
		sprites: make(map[*sprite]struct{}),
	}
	s.canvases = append(s.canvases, c)
	return c
}

func (s *Stage) Clear() {
	for _, el := range s.elements {
		el.release()
	}
	s.elements = nil
	for _, c := range s.canvases {
		c.Clear()
		c.freeAll()
	}
	s.canvases = nil
}

// NewImage decodes src (blurred by blur px when set) and uploads it.
func (s *Stage) NewImage(src string, blur float64) (engine2D.Element, error) {
	img, err := s.decodeImage(src)
	if err != nil {
		return nil, err
	}
	if blur > 0 {
		img = convert.Blur(img, blur)
	}

	tex := uploadTexture(img)
	if tex.ID == 0 {
		return nil, fmt.Errorf("upload %s: texture creation failed", src)
	}
	return &imageLayer{layerBase: layerBase{src: src, opacity: 1, transform: engine2D.Identity()}, texture: &tex}, nil
}

// NewVideo starts decoding src. Playback is always muted; Loop controls
// whether the stream restarts at the end.
func (s *Stage) NewVideo(src string, opts engine2D.VideoOptions) (engine2D.VideoElement, error) {
	v, err := s.openVideo(context.Background(), src, opts.Loop)
	if err != nil {
		return nil, err
	}

	img := rl.GenImageColor(v.Width, v.Height, rl.Blank)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)

	el := &videoLayer{
		layerBase: layerBase{src: src, opacity: 1, transform: engine2D.Identity(), width: float64(v.Width), height: float64(v.Height)},
		video:     v,
		texture:   &tex,
	}
	el.held = !opts.Autoplay
	if el.held || s.suspended {
		el.Pause()
	}
	return el, nil
}

// SetPaused freezes or restarts every video layer, e.g. while the window
// is minimized. Layers created without autoplay stay paused.
func (s *Stage) SetPaused(paused bool) {
	if s.suspended == paused {
		return
	}
	s.suspended = paused
	for _, el := range s.elements {
		v, ok := el.(*videoLayer)
		if !ok {
			continue
		}
		if paused {
			v.Pause()
		} else {
			v.resume()
		}
	}
}

func (s *Stage) Paused() bool { return s.suspended }

// Draw renders every mounted element and particle canvas inside Rect.
func (s *Stage) Draw() {
	x, y := int32(s.Rect.X), int32(s.Rect.Y)
	w, h := int32(s.Rect.Width), int32(s.Rect.Height)

	rl.BeginScissorMode(x, y, w, h)
	rl.DrawRectangle(x, y, w, h, rl.NewColor(s.BgColor.R, s.BgColor.G, s.BgColor.B, s.BgColor.A))

	cx := s.Rect.X + s.Rect.Width/2
	cy := s.Rect.Y + s.Rect.Height/2
	for _, el := range s.elements {
		el.draw(cx, cy)
	}
	for _, c := range s.canvases {
		c.replay(s.Rect.X, s.Rect.Y)
	}

	rl.EndScissorMode()
}

// Elements summarises the mounted layers in draw order.
func (s *Stage) Elements() []ElementInfo {
	out := make([]ElementInfo, len(s.elements))
	for i, el := range s.elements {
		out[i] = el.describe()
	}
	return out
}

// ParticleCount is the number of sprites drawn on the last particle frame.
func (s *Stage) ParticleCount() int {
	n := 0
	for _, c := range s.canvases {
		n += len(c.commands)
	}
	return n
}
