package engine2D

import (
	"parallax-banner/internal/engine2D/particle"
	"parallax-banner/internal/input"
)

// Element is one mounted media layer.
type Element interface {
	SetSize(width, height float64)
	SetTransform(m Matrix)
	SetOpacity(opacity float64)
}

// VideoElement is an Element backed by a playing video stream.
type VideoElement interface {
	Element
	NaturalSize() (width, height float64)
	Pause()
	// Detach drops the stream source without seeking or resetting it.
	Detach()
}

type VideoOptions struct {
	Loop     bool
	Muted    bool
	Autoplay bool
}

// MediaFactory creates unmounted elements.
type MediaFactory interface {
	NewImage(src string, blur float64) (Element, error)
	NewVideo(src string, opts VideoOptions) (VideoElement, error)
}

// Container is the mount point the engine renders into.
type Container interface {
	Size() (width, height float64)
	ViewportWidth() float64
	Events() *input.Dispatcher

	Append(el Element)
	NewCanvas() particle.Canvas
	// Clear unmounts and releases every element and canvas.
	Clear()
}
