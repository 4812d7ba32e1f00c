package convert

import (
	"image"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Blur softens img by shrinking it by roughly radius and scaling it back up.
// A radius below one pixel returns img unchanged.
func Blur(img image.Image, radius float64) image.Image {
	if radius < 1 {
		return img
	}
	b := img.Bounds()
	if b.Empty() {
		return img
	}

	factor := 1 + radius/2
	sw := int(math.Max(1, math.Round(float64(b.Dx())/factor)))
	sh := int(math.Max(1, math.Round(float64(b.Dy())/factor)))

	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.CatmullRom.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

// ToRGBA returns img as a tightly packed *image.RGBA anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// EncodeWebP writes img as a lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}
