package stage

import (
	"image"
	"image/color"
	"math"
	"unsafe"

	"parallax-banner/internal/convert"
	"parallax-banner/internal/engine2D"
	"parallax-banner/internal/engine2D/particle"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func uploadTexture(img image.Image) rl.Texture2D {
	rlImg := rl.NewImageFromImage(convert.ToRGBA(img))
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	if tex.ID != 0 {
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	}
	return tex
}

func tint(opacity float64) rl.Color {
	a := math.Max(0, math.Min(1, opacity))
	return rl.NewColor(255, 255, 255, uint8(math.Round(a*255)))
}

// drawTransformed paints tex as a width x height box centred on (cx, cy),
// transformed about its own centre by m.
func drawTransformed(tex rl.Texture2D, cx, cy float32, width, height float64, m engine2D.Matrix, opacity float64) {
	if width <= 0 || height <= 0 || opacity <= 0 {
		return
	}
	src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
	dest := rl.NewRectangle(-float32(width)/2, -float32(height)/2, float32(width), float32(height))

	rl.PushMatrix()
	rl.Translatef(cx, cy, 0)
	rl.MultMatrixf(m.Mat4())
	rl.DrawTexturePro(tex, src, dest, rl.NewVector2(0, 0), 0, tint(opacity))
	rl.PopMatrix()
}

func (l *imageLayer) draw(cx, cy float32) {
	if l.texture == nil {
		return
	}
	drawTransformed(*l.texture, cx, cy, l.width, l.height, l.transform, l.opacity)
}

func (l *imageLayer) release() {
	if l.texture != nil {
		rl.UnloadTexture(*l.texture)
		l.texture = nil
	}
}

func (l *imageLayer) describe() ElementInfo {
	return ElementInfo{Src: l.src, Width: l.width, Height: l.height, Opacity: l.opacity, Transform: l.transform}
}

func (l *videoLayer) NaturalSize() (float64, float64) {
	if l.video == nil {
		return 0, 0
	}
	return float64(l.video.Width), float64(l.video.Height)
}

func (l *videoLayer) Pause() {
	l.paused = true
	if l.video != nil {
		l.video.Pause()
	}
}

func (l *videoLayer) resume() {
	if l.held {
		return
	}
	l.paused = false
	if l.video != nil {
		l.video.Resume()
	}
}

// Detach stops the decoder. The last uploaded frame stays until release.
func (l *videoLayer) Detach() {
	if l.video != nil {
		l.video.Close()
		l.video = nil
	}
}

func (l *videoLayer) draw(cx, cy float32) {
	if l.texture == nil {
		return
	}
	if l.video != nil {
		l.video.WithFrame(func(pix []byte) {
			rl.UpdateTexture(*l.texture, rgbaPixels(pix))
		})
	}
	drawTransformed(*l.texture, cx, cy, l.width, l.height, l.transform, l.opacity)
}

func (l *videoLayer) release() {
	l.Detach()
	if l.texture != nil {
		rl.UnloadTexture(*l.texture)
		l.texture = nil
	}
}

func (l *videoLayer) describe() ElementInfo {
	return ElementInfo{Src: l.src, Video: true, Width: l.width, Height: l.height, Opacity: l.opacity, Transform: l.transform}
}

// rgbaPixels reinterprets packed RGBA bytes without copying.
func rgbaPixels(pix []byte) []color.RGBA {
	if len(pix) < 4 {
		return nil
	}
	return unsafe.Slice((*color.RGBA)(unsafe.Pointer(&pix[0])), len(pix)/4)
}

func (c *Canvas) Size() (float64, float64) { return c.width, c.height }

func (c *Canvas) Resize(width, height float64) {
	c.width, c.height = width, height
}

func (c *Canvas) Clear() { c.commands = c.commands[:0] }

func (c *Canvas) Upload(img image.Image) particle.Sprite {
	sp := &sprite{texture: uploadTexture(img)}
	c.sprites[sp] = struct{}{}
	return sp
}

func (c *Canvas) Free(s particle.Sprite) {
	sp, ok := s.(*sprite)
	if !ok {
		return
	}
	if _, live := c.sprites[sp]; !live {
		return
	}
	delete(c.sprites, sp)
	rl.UnloadTexture(sp.texture)
}

func (c *Canvas) freeAll() {
	for sp := range c.sprites {
		rl.UnloadTexture(sp.texture)
	}
	clear(c.sprites)
}

func (c *Canvas) DrawSprite(s particle.Sprite, x, y, width, height, rotation, opacity float64) {
	sp, ok := s.(*sprite)
	if !ok || opacity <= 0 {
		return
	}
	c.commands = append(c.commands, spriteCommand{
		sprite:   sp,
		dest:     rl.NewRectangle(float32(x+width/2), float32(y+height/2), float32(width), float32(height)),
		rotation: float32(rotation),
		tint:     tint(opacity),
	})
}

func (c *Canvas) replay(offsetX, offsetY float32) {
	for _, cmd := range c.commands {
		if _, live := c.sprites[cmd.sprite]; !live {
			continue
		}
		tex := cmd.sprite.texture
		src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
		dest := cmd.dest
		dest.X += offsetX
		dest.Y += offsetY
		origin := rl.NewVector2(dest.Width/2, dest.Height/2)
		rl.DrawTexturePro(tex, src, dest, origin, cmd.rotation, cmd.tint)
	}
}
