package dom

import (
	"context"
	"slices"
)

const (
	EventClick  = "click"
	EventSubmit = "submit"
)

// Listener handles one event. Listeners run outside the event loop, so they
// must not touch the document directly: read what they need when they are
// bound and hop back onto the loop for any mutation.
type Listener func(ctx context.Context, ev *Event)

type Event struct {
	Type   string
	Target *Element

	defaultPrevented bool
}

func NewEvent(typ string, target *Element) *Event {
	return &Event{Type: typ, Target: target}
}

func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

func (e *Element) AddEventListener(typ string, l Listener) {
	byType, ok := e.doc.listeners[e.node]
	if !ok {
		byType = make(map[string][]Listener)
		e.doc.listeners[e.node] = byType
	}
	byType[typ] = append(byType[typ], l)
}

// Listeners returns a snapshot of the listeners bound for typ.
func (e *Element) Listeners(typ string) []Listener {
	return slices.Clone(e.doc.listeners[e.node][typ])
}

// ListenerCount is the number of listeners of every type still attached
// anywhere in the document.
func (d *Document) ListenerCount() int {
	n := 0
	for _, byType := range d.listeners {
		for _, ls := range byType {
			n += len(ls)
		}
	}
	return n
}

// Invoke runs listeners in order, each to completion, and reports whether the
// default action was prevented.
func Invoke(ctx context.Context, ev *Event, listeners []Listener) bool {
	for _, l := range listeners {
		l(ctx, ev)
	}
	return ev.DefaultPrevented()
}
