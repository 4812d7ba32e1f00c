package banner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"parallax-banner/internal/utils"
)

var (
	ErrEmpty = errors.New("banner: empty descriptor")
)

type rawLayer struct {
	Type      string    `json:"type"`
	Src       string    `json:"src"`
	Kind      string    `json:"kind"`
	TagName   string    `json:"tagName"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Transform []float64 `json:"transform"`
	A         float64   `json:"a"`
	G         float64   `json:"g"`
	F         *float64  `json:"f"`
	Deg       *float64  `json:"deg"`
	Opacity   []float64 `json:"opacity"`
	Blur      float64   `json:"blur"`
}

type rawObject struct {
	Mode string `json:"mode"`
	Src  string `json:"src"`
}

// Decode parses a normalized banner descriptor. Malformed JSON is an error;
// well-formed JSON of an unrecognised shape yields ModeUnknown so the caller
// can warn and render nothing. Layers breaking the data invariants are
// dropped with a warning.
func Decode(data []byte) (Descriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Descriptor{}, ErrEmpty
	}

	switch data[0] {
	case '{':
		var obj rawObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return Descriptor{}, fmt.Errorf("decode descriptor object: %w", err)
		}
		if obj.Mode == "simple-video" && obj.Src != "" {
			return SimpleVideo(obj.Src), nil
		}
		return Descriptor{Mode: ModeUnknown}, nil

	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return Descriptor{}, fmt.Errorf("decode layer list: %w", err)
		}
		return decodeLayers(entries)
	}

	return Descriptor{Mode: ModeUnknown}, nil
}

func decodeLayers(entries []json.RawMessage) (Descriptor, error) {
	desc := Descriptor{Mode: ModeParallax}

	for i, entry := range entries {
		var raw rawLayer
		if err := json.Unmarshal(entry, &raw); err != nil {
			return Descriptor{}, fmt.Errorf("decode layer %d: %w", i, err)
		}

		if raw.Type == "particle" {
			if desc.Particles != nil {
				utils.Warn("Descriptor has more than one particle entry, ignoring entry %d", i)
				continue
			}
			var cfg ParticleConfig
			if err := json.Unmarshal(entry, &cfg); err != nil {
				return Descriptor{}, fmt.Errorf("decode particle entry %d: %w", i, err)
			}
			if err := cfg.Validate(); err != nil {
				utils.Warn("Skipping particle entry %d: %v", i, err)
				continue
			}
			desc.Particles = &cfg
			continue
		}

		layer, err := raw.toLayer()
		if err != nil {
			utils.Warn("Skipping layer %d (%s): %v", i, raw.Src, err)
			continue
		}
		desc.Layers = append(desc.Layers, layer)
	}

	return desc, nil
}

func (raw rawLayer) toLayer() (Layer, error) {
	if raw.Src == "" {
		return Layer{}, errors.New("missing src")
	}
	if len(raw.Transform) != 6 {
		return Layer{}, fmt.Errorf("transform has %d components, want 6", len(raw.Transform))
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return Layer{}, fmt.Errorf("invalid size %vx%v", raw.Width, raw.Height)
	}

	kind, err := parseKind(raw.Kind, raw.TagName, raw.Src)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		Src:          raw.Src,
		Kind:         kind,
		Width:        raw.Width,
		Height:       raw.Height,
		Accel:        raw.A,
		Gravity:      raw.G,
		ScaleCoef:    raw.F,
		RotationCoef: raw.Deg,
		Blur:         raw.Blur,
	}
	copy(layer.Transform[:], raw.Transform)

	switch len(raw.Opacity) {
	case 0:
	case 2:
		r := Range{raw.Opacity[0], raw.Opacity[1]}
		layer.OpacityRange = &r
	default:
		return Layer{}, fmt.Errorf("opacity range has %d values, want 2", len(raw.Opacity))
	}

	return layer, nil
}

func parseKind(kind, tagName, src string) (Kind, error) {
	k := strings.ToLower(kind)
	if k == "" {
		k = strings.ToLower(tagName)
	}
	switch k {
	case "image", "img":
		return KindImage, nil
	case "video":
		return KindVideo, nil
	case "":
		if utils.IsVideoPath(src) {
			return KindVideo, nil
		}
		return KindImage, nil
	}
	return KindImage, fmt.Errorf("unknown kind %q", kind)
}

// Validate checks the particle configuration is usable.
func (c ParticleConfig) Validate() error {
	if len(c.Srcs) == 0 {
		return errors.New("no sprite sources")
	}
	if c.Count <= 0 {
		return fmt.Errorf("count %d must be positive", c.Count)
	}
	if c.SizeRange[0] < 0 || c.SizeRange[1] < 0 {
		return fmt.Errorf("size range %v must not be negative", c.SizeRange)
	}
	if c.SizeRange[0] == 0 && c.SizeRange[1] == 0 {
		return errors.New("size range must be positive")
	}
	return nil
}

// LoadFile reads and decodes a descriptor, resolving media sources
// relative to the file's directory.
func LoadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}

	desc, err := Decode(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	baseDir := filepath.Dir(path)
	desc.Video = utils.ResolveMediaPath(baseDir, desc.Video)
	for i := range desc.Layers {
		desc.Layers[i].Src = utils.ResolveMediaPath(baseDir, desc.Layers[i].Src)
	}
	if desc.Particles != nil {
		srcs := make([]string, len(desc.Particles.Srcs))
		for i, s := range desc.Particles.Srcs {
			srcs[i] = utils.ResolveMediaPath(baseDir, s)
		}
		desc.Particles.Srcs = srcs
	}
	return desc, nil
}
