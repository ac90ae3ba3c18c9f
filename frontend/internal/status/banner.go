// Package status owns the transient status message shown after every
// mutation.
package status

import (
	"sync"
	"time"

	"github.com/mergington/activities/frontend/internal/dom"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const hiddenClass = "hidden"

// DefaultHideAfter is how long a message stays visible.
const DefaultHideAfter = 5000 * time.Millisecond

// Message is a snapshot of the banner.
type Message struct {
	Text    string
	Kind    Kind
	Visible bool
}

// Banner is the single status message of a page. The latest Show wins.
// Every Show may be followed by its own HideLater timer, and an older timer
// still hides a newer message when it fires.
//
// Show, Hide and Current must run on the event loop; HideLater's timers reach
// the loop through post.
type Banner struct {
	el    *dom.Element
	clock Clock
	delay time.Duration
	post  func(func())

	mu     sync.Mutex
	timers map[Timer]struct{}
}

func NewBanner(el *dom.Element, clock Clock, delay time.Duration, post func(func())) *Banner {
	if delay <= 0 {
		delay = DefaultHideAfter
	}
	return &Banner{
		el:     el,
		clock:  clock,
		delay:  delay,
		post:   post,
		timers: make(map[Timer]struct{}),
	}
}

// Show replaces the text and the styling of the message and makes it visible.
func (b *Banner) Show(text string, kind Kind) {
	b.el.SetTextContent(text)
	b.el.SetClassName(string(kind))
}

func (b *Banner) Hide() {
	b.el.AddClass(hiddenClass)
}

func (b *Banner) Current() Message {
	kind := KindSuccess
	if b.el.HasClass(string(KindError)) {
		kind = KindError
	}
	return Message{
		Text:    b.el.TextContent(),
		Kind:    kind,
		Visible: !b.el.HasClass(hiddenClass),
	}
}

// HideLater schedules one hide after the configured delay. It is safe to
// call from any goroutine.
func (b *Banner) HideLater() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var t Timer
	t = b.clock.AfterFunc(b.delay, func() {
		b.mu.Lock()
		delete(b.timers, t)
		b.mu.Unlock()
		b.post(b.Hide)
	})
	b.timers[t] = struct{}{}
}

// Pending is the number of hide timers that have not fired yet.
func (b *Banner) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

// Stop cancels every pending hide timer.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t := range b.timers {
		t.Stop()
		delete(b.timers, t)
	}
}
