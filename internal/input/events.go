package input

// Kind identifies an event type.
type Kind int

const (
	PointerEnter Kind = iota
	PointerMove
	PointerLeave
	Blur
	Resize
)

func (k Kind) String() string {
	switch k {
	case PointerEnter:
		return "pointerenter"
	case PointerMove:
		return "pointermove"
	case PointerLeave:
		return "pointerleave"
	case Blur:
		return "blur"
	case Resize:
		return "resize"
	}
	return "unknown"
}

// Event carries the payload of one dispatched event. X is set for pointer
// events, Width/Height for Resize.
type Event struct {
	Kind   Kind
	X, Y   float64
	Width  float64
	Height float64
}

// Handler receives dispatched events.
type Handler func(Event)
