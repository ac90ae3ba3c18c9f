package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrInvalidForm = errors.New("form is invalid")

var validate = validator.New()

// Value is the current value of an input, textarea or select.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Select:
		if opt := e.selectedOption(); opt != nil {
			return opt.optionValue()
		}
		return ""
	case atom.Textarea:
		return e.TextContent()
	case atom.Option:
		return e.optionValue()
	default:
		return e.GetAttribute("value")
	}
}

// SetValue sets the current value. On a select it selects the first option
// with that value, or falls back to the first option when none matches.
func (e *Element) SetValue(value string) {
	switch e.node.DataAtom {
	case atom.Select:
		matched := false
		for _, opt := range e.Options() {
			if !matched && opt.optionValue() == value {
				opt.SetAttribute("selected", "")
				matched = true
				continue
			}
			opt.RemoveAttribute("selected")
		}
	case atom.Textarea:
		e.SetTextContent(value)
	default:
		e.SetAttribute("value", value)
	}
}

// Options returns the option elements of a select.
func (e *Element) Options() []*Element {
	return e.ByTag("option")
}

func (e *Element) selectedOption() *Element {
	opts := e.Options()
	for _, opt := range opts {
		if _, ok := opt.Attr("selected"); ok {
			return opt
		}
	}
	if len(opts) > 0 {
		return opts[0]
	}
	return nil
}

func (e *Element) optionValue() string {
	if v, ok := e.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(e.TextContent())
}

// Reset restores every resettable control of a form to the value it had in
// the parsed markup. Hidden inputs keep their value.
func (e *Element) Reset() {
	for _, c := range e.controls() {
		switch c.node.DataAtom {
		case atom.Select:
			def, ok := e.doc.defaults[c.node]
			if ok {
				c.SetValue(def)
			} else {
				for _, opt := range c.Options() {
					opt.RemoveAttribute("selected")
				}
			}
		case atom.Textarea:
			c.SetTextContent(e.doc.defaults[c.node])
		default:
			if !resettable(c) {
				continue
			}
			if def, ok := e.doc.defaults[c.node]; ok {
				c.SetAttribute("value", def)
			} else {
				c.RemoveAttribute("value")
			}
		}
	}
}

// CheckValidity applies the constraints the markup declares: required
// controls must be non-empty and email inputs must hold an address.
func (e *Element) CheckValidity() error {
	for _, c := range e.controls() {
		name := c.GetAttribute("name")
		if name == "" {
			name = c.ID()
		}
		value := c.Value()
		if _, required := c.Attr("required"); required && value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidForm, name)
		}
		if c.node.DataAtom == atom.Input && strings.EqualFold(c.GetAttribute("type"), "email") && value != "" {
			if err := validate.Var(value, "email"); err != nil {
				return fmt.Errorf("%w: %s is not a valid email address", ErrInvalidForm, name)
			}
		}
	}
	return nil
}

func (e *Element) controls() []*Element {
	return e.Find(func(el *Element) bool {
		switch el.node.DataAtom {
		case atom.Input, atom.Select, atom.Textarea:
			return true
		}
		return false
	})
}

func resettable(input *Element) bool {
	switch strings.ToLower(input.GetAttribute("type")) {
	case "hidden", "submit", "button", "reset", "image":
		return false
	}
	return true
}

func (d *Document) recordDefaults() {
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		el := d.wrap(n)
		switch n.DataAtom {
		case atom.Input:
			if v, ok := el.Attr("value"); ok {
				d.defaults[n] = v
			}
		case atom.Textarea:
			d.defaults[n] = el.TextContent()
		case atom.Select:
			for _, opt := range el.Options() {
				if _, ok := opt.Attr("selected"); ok {
					d.defaults[n] = opt.optionValue()
					break
				}
			}
		}
		return true
	})
}

// SetDefaultValue sets both the current and the reset value of a control.
func (e *Element) SetDefaultValue(value string) {
	e.SetValue(value)
	e.doc.defaults[e.node] = value
}
