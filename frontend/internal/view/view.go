// Package view renders the activity collection into the page.
package view

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mergington/activities/frontend/internal/dom"
	"github.com/mergington/activities/shared/domain"
)

// Element ids of the page.
const (
	ListID    = "activities-list"
	SelectID  = "activity"
	FormID    = "signup-form"
	MessageID = "message"
	EmailID   = "email"
	// RemovalFormID is the form delete buttons submit when the page is used
	// without scripts.
	RemovalFormID = "participant-actions"
)

const (
	classCard                = "activity-card"
	classParticipantsSection = "participants-section"
	classParticipantsList    = "participants-list"
	classParticipantEmail    = "participant-email"
	ClassDeleteButton        = "delete-btn"
	classNoParticipants      = "no-participants"
)

const (
	// LoadErrorMarkup replaces the list when the collection cannot be fetched.
	LoadErrorMarkup = "<p>Failed to load activities. Please try again later.</p>"

	noParticipantsText = "No participants yet. Be the first to sign up!"
	removeTitle        = "Remove participant"
	removeLabel        = "✕"

	// RemoveField is the form field carrying EncodeRemoval's value.
	RemoveField = "remove"
)

var ErrMissingElement = errors.New("page element missing")

// RemoveFunc withdraws a participant; it returns once the whole action,
// including its refresh, is done.
type RemoveFunc func(ctx context.Context, activity domain.ActivityName, email domain.Email)

type Renderer struct {
	doc      *dom.Document
	list     *dom.Element
	sel      *dom.Element
	onRemove RemoveFunc
}

func New(doc *dom.Document, onRemove RemoveFunc) (*Renderer, error) {
	list := doc.GetElementByID(ListID)
	if list == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingElement, ListID)
	}
	sel := doc.GetElementByID(SelectID)
	if sel == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingElement, SelectID)
	}
	return &Renderer{doc: doc, list: list, sel: sel, onRemove: onRemove}, nil
}

// Render rebuilds the list and the select options from scratch, then binds
// the removal controls. Must run on the event loop.
func (r *Renderer) Render(activities domain.Activities) {
	r.list.ReplaceChildren()
	selected := r.sel.Value()
	r.clearOptions()

	for _, a := range activities {
		r.list.AppendChild(r.card(a))

		opt := r.doc.CreateElement("option")
		opt.SetAttribute("value", a.Name)
		opt.SetTextContent(a.Name)
		r.sel.AppendChild(opt)
	}
	if selected != "" {
		r.sel.SetValue(selected)
	}

	r.bindRemovals()
}

// RenderLoadError replaces the list with the fixed failure message.
func (r *Renderer) RenderLoadError() {
	// LoadErrorMarkup is constant and well formed.
	_ = r.list.SetInnerHTML(LoadErrorMarkup)
}

// clearOptions drops every option except the leading placeholder.
func (r *Renderer) clearOptions() {
	for i, opt := range r.sel.Options() {
		if i == 0 {
			continue
		}
		opt.Parent().RemoveChild(opt)
	}
}

func (r *Renderer) card(a domain.Activity) *dom.Element {
	card := r.doc.CreateElement("div")
	card.SetClassName(classCard)

	name := r.doc.CreateElement("h4")
	name.SetTextContent(a.Name)
	card.AppendChild(name)

	desc := r.doc.CreateElement("p")
	desc.SetTextContent(a.Description)
	card.AppendChild(desc)

	card.AppendChild(r.labelled("Schedule:", a.Schedule))
	card.AppendChild(r.labelled("Availability:", strconv.Itoa(a.SpotsLeft())+" spots left"))
	card.AppendChild(r.participants(a))
	return card
}

// labelled builds <p><strong>label</strong> value</p>.
func (r *Renderer) labelled(label, value string) *dom.Element {
	p := r.doc.CreateElement("p")
	strong := r.doc.CreateElement("strong")
	strong.SetTextContent(label)
	p.AppendChild(strong)
	p.AppendText(" " + value)
	return p
}

func (r *Renderer) participants(a domain.Activity) *dom.Element {
	section := r.doc.CreateElement("div")
	section.SetClassName(classParticipantsSection)

	title := r.doc.CreateElement("p")
	strong := r.doc.CreateElement("strong")
	strong.SetTextContent("Current Participants:")
	title.AppendChild(strong)
	section.AppendChild(title)

	if len(a.Participants) == 0 {
		empty := r.doc.CreateElement("p")
		empty.SetClassName(classNoParticipants)
		empty.SetTextContent(noParticipantsText)
		section.AppendChild(empty)
		return section
	}

	list := r.doc.CreateElement("ul")
	list.SetClassName(classParticipantsList)
	for _, email := range a.Participants {
		item := r.doc.CreateElement("li")

		span := r.doc.CreateElement("span")
		span.SetClassName(classParticipantEmail)
		span.SetTextContent(email)
		item.AppendChild(span)

		btn := r.doc.CreateElement("button")
		btn.SetClassName(ClassDeleteButton)
		btn.SetData("activity", a.Name)
		btn.SetData("email", email)
		btn.SetAttribute("title", removeTitle)
		btn.SetAttribute("type", "submit")
		btn.SetAttribute("form", RemovalFormID)
		btn.SetAttribute("name", RemoveField)
		btn.SetAttribute("value", EncodeRemoval(a.Name, email))
		btn.SetTextContent(removeLabel)
		item.AppendChild(btn)

		list.AppendChild(item)
	}
	section.AppendChild(list)
	return section
}

// bindRemovals attaches one click listener to every removal control of the
// freshly built list. The bound activity and email are read here, on the
// loop, so the listener never touches the document.
func (r *Renderer) bindRemovals() {
	for _, btn := range r.list.ByClass(ClassDeleteButton) {
		activity, email := btn.Data("activity"), btn.Data("email")
		btn.AddEventListener(dom.EventClick, func(ctx context.Context, ev *dom.Event) {
			ev.PreventDefault()
			r.onRemove(ctx, activity, email)
		})
	}
}

// EncodeRemoval packs the pair a delete button submits.
func EncodeRemoval(activity domain.ActivityName, email domain.Email) string {
	return url.Values{"activity": {activity}, "email": {email}}.Encode()
}

func DecodeRemoval(value string) (domain.ActivityName, domain.Email, error) {
	v, err := url.ParseQuery(value)
	if err != nil {
		return "", "", fmt.Errorf("decode removal: %w", err)
	}
	activity, email := v.Get("activity"), v.Get("email")
	if activity == "" || email == "" {
		return "", "", fmt.Errorf("decode removal: activity and email are required")
	}
	return activity, email, nil
}
