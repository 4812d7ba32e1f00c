package input

// Dispatcher is a minimal listener registry, one per event target.
type Dispatcher struct {
	nextID   int
	handlers map[Kind][]listener
}

type listener struct {
	id int
	fn Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind][]listener)}
}

// On registers fn for kind and returns a function that removes it again.
// Calling the remover more than once is harmless.
func (d *Dispatcher) On(kind Kind, fn Handler) func() {
	d.nextID++
	id := d.nextID
	d.handlers[kind] = append(d.handlers[kind], listener{id: id, fn: fn})

	return func() {
		list := d.handlers[kind]
		for i, l := range list {
			if l.id == id {
				d.handlers[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every handler registered for ev.Kind in registration order.
func (d *Dispatcher) Emit(ev Event) {
	list := d.handlers[ev.Kind]
	if len(list) == 0 {
		return
	}
	snapshot := make([]listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Len reports the total number of registered handlers.
func (d *Dispatcher) Len() int {
	n := 0
	for _, list := range d.handlers {
		n += len(list)
	}
	return n
}
