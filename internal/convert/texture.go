package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"parallax-banner/internal/utils"

	"github.com/dustin/go-humanize"
	"github.com/ftrvxmtrx/tga"
	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

const (
	texMagic = "TEXV0005"

	texFormatDXT5 = 4
	texFormatDXT3 = 6
	texFormatDXT1 = 7
	texFormatRG88 = 8
	texFormatR8   = 9
)

var ErrNoTexImage = errors.New("convert: no image found in texture")

// texReader keeps the first read error so header parsing can stay linear.
type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) uint32() uint32 {
	var v uint32
	if t.err == nil {
		t.err = binary.Read(t.r, binary.LittleEndian, &v)
	}
	return v
}

// str reads a fixed-size, NUL-padded magic string plus its terminator.
func (t *texReader) str(n int) string {
	if t.err != nil {
		return ""
	}
	b := make([]byte, n+1)
	if _, err := io.ReadFull(t.r, b); err != nil {
		t.err = err
		return ""
	}
	return string(bytes.Trim(b, "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(t.r, b); err != nil {
		t.err = err
		return nil
	}
	return b
}

// DecodeTex reads a Wallpaper Engine .tex texture and returns its first
// mipmap, cropped to the authored image size.
func DecodeTex(r io.Reader) (image.Image, error) {
	t := &texReader{r: bufio.NewReader(r)}

	magic := t.str(8)
	_ = t.str(8)
	if t.err != nil {
		return nil, fmt.Errorf("convert: tex header: %w", t.err)
	}
	if magic != texMagic {
		return nil, fmt.Errorf("convert: invalid tex magic %q", magic)
	}

	format := t.uint32()
	t.uint32() // flags
	t.uint32() // texture width
	t.uint32() // texture height
	imgW := t.uint32()
	imgH := t.uint32()
	t.uint32()

	container := t.str(8)
	imageCount := t.uint32()
	if container == "TEXB0003" {
		t.uint32()
	}
	if t.err != nil {
		return nil, fmt.Errorf("convert: tex container: %w", t.err)
	}
	if imageCount == 0 {
		return nil, ErrNoTexImage
	}

	mipmaps := t.uint32()
	if t.err != nil {
		return nil, fmt.Errorf("convert: tex mipmaps: %w", t.err)
	}
	if mipmaps == 0 {
		return nil, ErrNoTexImage
	}

	mW := t.uint32()
	mH := t.uint32()
	var compressed bool
	var rawSize uint32
	if container != "TEXB0001" {
		compressed = t.uint32() == 1
		rawSize = t.uint32()
	}
	size := t.uint32()
	data := t.bytes(size)
	if t.err != nil {
		return nil, fmt.Errorf("convert: tex mipmap: %w", t.err)
	}

	utils.Debug("    Format: %d, Mipmap: %dx%d, Target Size: %dx%d, %s", format, mW, mH, imgW, imgH, humanize.Bytes(uint64(size)))

	if compressed {
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("convert: tex lz4: %w", err)
		}
		data = out[:n]
	}

	pix, err := texPixels(format, data, mW, mH)
	if err != nil {
		return nil, err
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: int(mW * 4),
		Rect:   image.Rect(0, 0, int(mW), int(mH)),
	}
	if imgW == 0 || imgH == 0 || imgW > mW || imgH > mH {
		return img, nil
	}
	return img.SubImage(image.Rect(0, 0, int(imgW), int(imgH))), nil
}

func texPixels(format uint32, data []byte, w, h uint32) ([]byte, error) {
	blocks := ((w + 3) / 4) * ((h + 3) / 4)
	rgba := w * h * 4
	n := uint32(len(data))

	switch {
	case n == rgba:
		return data, nil
	case n == blocks*16 || format == texFormatDXT5:
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case format == texFormatDXT3:
		return dxt.DecodeDXT3(data, uint(w), uint(h))
	case n == blocks*8 || format == texFormatDXT1:
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	case format == texFormatR8 && n == rgba/4:
		pix := make([]byte, rgba)
		for i, v := range data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == texFormatRG88 && n == rgba/2:
		pix := make([]byte, rgba)
		for i := 0; i < int(w*h); i++ {
			lum, alpha := data[i*2], data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = lum, lum, lum, alpha
		}
		return pix, nil
	}
	return nil, fmt.Errorf("convert: unsupported tex format %d with %s of data", format, humanize.Bytes(uint64(n)))
}

// Decoders are picked by extension: tga registers itself with an empty
// magic string, so format sniffing would hand it every unknown file.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".webp": webp.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
}

// DecodeImage loads any supported still-image file.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".tex") {
		utils.Debug("Decoding texture: %s", path)
		img, err := DecodeTex(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return img, nil
	}

	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		decode = func(r io.Reader) (image.Image, error) {
			img, _, err := image.Decode(r)
			return img, err
		}
	}

	img, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("convert: decode %s: %w", path, err)
	}
	b := img.Bounds()
	utils.Debug("Decoded image %s (%dx%d)", path, b.Dx(), b.Dy())
	return img, nil
}
