// Package app boots the activities page inside one owned document and drives
// it: the initial fetch, re-renders after every mutation and the replay of
// user gestures as DOM events.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mergington/activities/frontend/internal/dispatch"
	"github.com/mergington/activities/frontend/internal/dom"
	"github.com/mergington/activities/frontend/internal/eventloop"
	"github.com/mergington/activities/frontend/internal/page"
	"github.com/mergington/activities/frontend/internal/status"
	"github.com/mergington/activities/frontend/internal/view"
	"github.com/mergington/activities/shared/domain"
	"github.com/mergington/activities/shared/logger"
)

// CSRFField is the hidden input both forms carry.
const CSRFField = "csrf_token"

var (
	ErrNotStarted         = errors.New("client not started")
	ErrUnknownParticipant = errors.New("participant is not on the page")
)

type ActivityAPI interface {
	GetActivities(ctx context.Context) (domain.Activities, error)
	dispatch.ActivityAPI
}

type Options struct {
	Clock     status.Clock
	HideAfter time.Duration
}

// FormInput is what a signup form post carries.
type FormInput struct {
	Activity domain.ActivityName
	Email    domain.Email
}

// Client owns one document. Document access happens on its event loop only;
// network calls and listeners run on the caller's goroutine.
type Client struct {
	api       ActivityAPI
	clock     status.Clock
	hideAfter time.Duration
	log       *slog.Logger

	loop       *eventloop.Loop
	doc        *dom.Document
	form       *dom.Element
	emailInput *dom.Element
	selector   *dom.Element
	renderer   *view.Renderer
	banner     *status.Banner
	dispatcher *dispatch.Dispatcher

	// settled is set when the document was just brought up to date by Start
	// or an action, and consumed by the next Reload.
	settled atomic.Bool
}

func New(client ActivityAPI, opts Options) *Client {
	if opts.Clock == nil {
		opts.Clock = status.SystemClock{}
	}
	if opts.HideAfter <= 0 {
		opts.HideAfter = status.DefaultHideAfter
	}
	return &Client{
		api:       client,
		clock:     opts.Clock,
		hideAfter: opts.HideAfter,
		log:       logger.For("app"),
	}
}

// Start builds the document, binds the page elements and runs the first
// refresh. It returns once the first render is done.
func (c *Client) Start(ctx context.Context) error {
	doc, err := page.Document()
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	c.loop = eventloop.New()
	go c.loop.Run(context.Background())

	var bindErr error
	if err := c.loop.Do(ctx, func() { bindErr = c.bind(doc) }); err != nil {
		c.loop.Close()
		return err
	}
	if bindErr != nil {
		c.loop.Close()
		return bindErr
	}

	c.Refresh(ctx)
	c.settled.Store(true)
	return nil
}

func (c *Client) bind(doc *dom.Document) error {
	elements := make(map[string]*dom.Element)
	for _, id := range []string{view.FormID, view.EmailID, view.SelectID, view.MessageID} {
		el := doc.GetElementByID(id)
		if el == nil {
			return fmt.Errorf("%w: #%s", view.ErrMissingElement, id)
		}
		elements[id] = el
	}

	c.dispatcher = dispatch.New(c.api, c)
	renderer, err := view.New(doc, c.dispatcher.Withdraw)
	if err != nil {
		return err
	}

	c.doc = doc
	c.renderer = renderer
	c.form = elements[view.FormID]
	c.emailInput = elements[view.EmailID]
	c.selector = elements[view.SelectID]
	c.banner = status.NewBanner(elements[view.MessageID], c.clock, c.hideAfter, c.loop.Post)

	c.form.AddEventListener(dom.EventSubmit, c.onSubmit)
	return nil
}

// onSubmit reads the form when the event fires, not when it was bound.
func (c *Client) onSubmit(ctx context.Context, ev *dom.Event) {
	ev.PreventDefault()

	var activity, email string
	err := c.loop.Do(ctx, func() {
		email = c.emailInput.Value()
		activity = c.selector.Value()
	})
	if err != nil {
		c.log.Debug("submit dropped", "error", err)
		return
	}
	c.dispatcher.Signup(ctx, activity, email)
}

// Refresh fetches the collection and renders it, or replaces the list with
// the load error message. Failures are logged, never returned.
func (c *Client) Refresh(ctx context.Context) {
	activities, err := c.api.GetActivities(ctx)
	if err != nil {
		c.log.Error("failed to fetch activities", "error", err)
		c.do(ctx, c.renderer.RenderLoadError)
		return
	}
	c.do(ctx, func() { c.renderer.Render(activities) })
}

// Reload is a page load: it refetches the collection, unless Start or an
// action has just rendered it and nothing was served since.
func (c *Client) Reload(ctx context.Context) error {
	if c.loop == nil {
		return ErrNotStarted
	}
	if c.settled.Swap(false) {
		return nil
	}
	c.Refresh(ctx)
	return nil
}

func (c *Client) ShowStatus(ctx context.Context, text string, kind status.Kind) {
	c.do(ctx, func() { c.banner.Show(text, kind) })
}

func (c *Client) ResetSignupForm(ctx context.Context) {
	c.do(ctx, c.form.Reset)
}

func (c *Client) HideStatusLater() {
	c.banner.HideLater()
}

// do runs fn on the loop. A stopped loop or a cancelled caller only loses
// the update.
func (c *Client) do(ctx context.Context, fn func()) {
	if err := c.loop.Do(ctx, fn); err != nil {
		c.log.Debug("document update dropped", "error", err)
	}
}

// Submit fills the signup form with in, validates it the way the browser
// would and dispatches submit. It returns dom.ErrInvalidForm without
// dispatching when a constraint fails.
func (c *Client) Submit(ctx context.Context, in FormInput) error {
	if c.loop == nil {
		return ErrNotStarted
	}

	var (
		invalid   error
		listeners []dom.Listener
	)
	err := c.loop.Do(ctx, func() {
		c.emailInput.SetValue(in.Email)
		c.selector.SetValue(in.Activity)
		if invalid = c.form.CheckValidity(); invalid != nil {
			return
		}
		listeners = c.form.Listeners(dom.EventSubmit)
	})
	if err != nil {
		return err
	}
	if invalid != nil {
		return invalid
	}

	dom.Invoke(ctx, dom.NewEvent(dom.EventSubmit, c.form), listeners)
	c.settled.Store(true)
	return nil
}

// Click dispatches click on the removal control of email within activity.
func (c *Client) Click(ctx context.Context, activity domain.ActivityName, email domain.Email) error {
	if c.loop == nil {
		return ErrNotStarted
	}

	var (
		target    *dom.Element
		listeners []dom.Listener
	)
	err := c.loop.Do(ctx, func() {
		for _, btn := range c.doc.ByClass(view.ClassDeleteButton) {
			if btn.Data("activity") == activity && btn.Data("email") == email {
				target = btn
				listeners = btn.Listeners(dom.EventClick)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%w: %s in %s", ErrUnknownParticipant, email, activity)
	}

	dom.Invoke(ctx, dom.NewEvent(dom.EventClick, target), listeners)
	c.settled.Store(true)
	return nil
}

// Render writes the current serialization of the document.
func (c *Client) Render(ctx context.Context, w io.Writer) error {
	if c.loop == nil {
		return ErrNotStarted
	}
	var (
		buf       bytes.Buffer
		renderErr error
	)
	if err := c.loop.Do(ctx, func() { renderErr = c.doc.Render(&buf) }); err != nil {
		return err
	}
	if renderErr != nil {
		return fmt.Errorf("render document: %w", renderErr)
	}
	_, err := buf.WriteTo(w)
	return err
}

// SetCSRFToken stores token in the hidden field of every form. Form resets
// keep it.
func (c *Client) SetCSRFToken(ctx context.Context, token string) error {
	if c.loop == nil {
		return ErrNotStarted
	}
	return c.loop.Do(ctx, func() {
		fields := c.doc.Body().Find(func(el *dom.Element) bool {
			return el.TagName() == "input" && el.GetAttribute("name") == CSRFField
		})
		for _, f := range fields {
			f.SetDefaultValue(token)
		}
	})
}

// Inspect runs fn on the loop with the document.
func (c *Client) Inspect(ctx context.Context, fn func(doc *dom.Document)) error {
	if c.loop == nil {
		return ErrNotStarted
	}
	return c.loop.Do(ctx, func() { fn(c.doc) })
}

// Status is the current state of the status message.
func (c *Client) Status(ctx context.Context) (status.Message, error) {
	var msg status.Message
	if c.loop == nil {
		return msg, ErrNotStarted
	}
	err := c.loop.Do(ctx, func() { msg = c.banner.Current() })
	return msg, err
}

// Close cancels pending hide timers and stops the loop.
func (c *Client) Close() {
	if c.loop == nil {
		return
	}
	if c.banner != nil {
		c.banner.Stop()
	}
	c.loop.Close()
}
