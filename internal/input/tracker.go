package input

// Rect is an axis-aligned rectangle in window coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Sample is one poll of the pointer and window state.
type Sample struct {
	X, Y         float64
	OnWindow     bool
	Focused      bool
	WindowWidth  float64
	WindowHeight float64
}

// Tracker turns polled samples into discrete events: pointer events go to
// the container dispatcher, blur and resize to the window dispatcher.
type Tracker struct {
	Container *Dispatcher
	Window    *Dispatcher
	Bounds    Rect

	inside      bool
	lastX       float64
	focused     bool
	width       float64
	height      float64
	initialized bool
}

func NewTracker(container, window *Dispatcher, bounds Rect) *Tracker {
	return &Tracker{Container: container, Window: window, Bounds: bounds}
}

// Poll compares s with the previous sample and emits what changed.
func (t *Tracker) Poll(s Sample) {
	if !t.initialized {
		t.initialized = true
		t.focused = s.Focused
		t.width, t.height = s.WindowWidth, s.WindowHeight
	}

	if s.WindowWidth != t.width || s.WindowHeight != t.height {
		t.width, t.height = s.WindowWidth, s.WindowHeight
		t.Window.Emit(Event{Kind: Resize, Width: s.WindowWidth, Height: s.WindowHeight})
	}

	if t.focused && !s.Focused {
		t.Window.Emit(Event{Kind: Blur})
	}
	t.focused = s.Focused

	inside := s.OnWindow && t.Bounds.Contains(s.X, s.Y)
	switch {
	case inside && !t.inside:
		t.inside = true
		t.lastX = s.X
		t.Container.Emit(Event{Kind: PointerEnter, X: s.X, Y: s.Y})
	case !inside && t.inside:
		t.inside = false
		t.Container.Emit(Event{Kind: PointerLeave, X: s.X, Y: s.Y})
	case inside && s.X != t.lastX:
		t.lastX = s.X
		t.Container.Emit(Event{Kind: PointerMove, X: s.X, Y: s.Y})
	}
}

// Inside reports whether the last sample was within Bounds.
func (t *Tracker) Inside() bool { return t.inside }
