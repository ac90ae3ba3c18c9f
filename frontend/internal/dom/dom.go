// Package dom is a small document object model over golang.org/x/net/html.
//
// A Document is not safe for concurrent use. The client confines every
// Document to its event loop; see package eventloop.
package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]Listener
	defaults  map[*html.Node]string
}

// Parse builds a document from page markup. Form control values present in
// the markup are recorded as the defaults that Reset restores.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	d := &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]Listener),
		defaults:  make(map[*html.Node]string),
	}
	d.recordDefaults()
	return d, nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// Body returns the body element.
func (d *Document) Body() *Element {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	return d.wrap(body)
}

// GetElementByID returns the first element with the id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

// ByClass returns every element carrying class, in document order.
func (d *Document) ByClass(class string) []*Element {
	return d.wrap(d.root).ByClass(class)
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// Render serializes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// forget drops the bookkeeping of a subtree leaving the document.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(d.listeners, c)
		delete(d.defaults, c)
		return true
	})
}

type Element struct {
	doc  *Document
	node *html.Node
}

// Is reports whether both wrappers point at the same node.
func (e *Element) Is(other *Element) bool {
	return other != nil && e.node == other.node
}

func (e *Element) TagName() string {
	return e.node.Data
}

func (e *Element) ID() string {
	return attr(e.node, "id")
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttribute returns the attribute value, or "" when absent.
func (e *Element) GetAttribute(name string) string {
	return attr(e.node, name)
}

func (e *Element) SetAttribute(name, value string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttribute(name string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
}

// Data reads the data-<key> attribute.
func (e *Element) Data(key string) string {
	return attr(e.node, "data-"+key)
}

func (e *Element) SetData(key, value string) {
	e.SetAttribute("data-"+key, value)
}

func (e *Element) ClassName() string {
	return attr(e.node, "class")
}

// SetClassName replaces the whole class attribute.
func (e *Element) SetClassName(class string) {
	e.SetAttribute("class", class)
}

func (e *Element) ClassList() []string {
	return strings.Fields(e.ClassName())
}

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.ClassList(), class)
}

func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	e.SetClassName(strings.Join(append(e.ClassList(), class), " "))
}

func (e *Element) RemoveClass(class string) {
	classes := e.ClassList()
	if !slices.Contains(classes, class) {
		return
	}
	e.SetClassName(strings.Join(slices.DeleteFunc(classes, func(c string) bool { return c == class }), " "))
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() string {
	var b strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(text string) {
	e.ReplaceChildren()
	if text != "" {
		e.AppendText(text)
	}
}

func (e *Element) AppendText(text string) {
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// AppendChild moves child under e and returns it.
func (e *Element) AppendChild(child *Element) *Element {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
	return child
}

// RemoveChild detaches child and drops its listeners.
func (e *Element) RemoveChild(child *Element) {
	if child.node.Parent != e.node {
		return
	}
	e.node.RemoveChild(child.node)
	e.doc.forget(child.node)
}

// ReplaceChildren removes every child node, with their listeners.
func (e *Element) ReplaceChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
}

// SetInnerHTML replaces the children with the parsed markup fragment.
func (e *Element) SetInnerHTML(markup string) error {
	parent := &html.Node{Type: html.ElementNode, Data: e.node.Data, DataAtom: e.node.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	e.ReplaceChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) Parent() *Element {
	if e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// Children returns the element children, skipping text and comments.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// ByClass returns the descendants carrying class, in document order.
func (e *Element) ByClass(class string) []*Element {
	return e.Find(func(el *Element) bool { return el.HasClass(class) })
}

// ByTag returns the descendants with the tag name, in document order.
func (e *Element) ByTag(tag string) []*Element {
	tag = strings.ToLower(tag)
	return e.Find(func(el *Element) bool { return el.node.Data == tag })
}

// Find returns the descendants matching pred, in document order.
func (e *Element) Find(pred func(*Element) bool) []*Element {
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n != e.node && n.Type == html.ElementNode {
			if el := e.doc.wrap(n); pred(el) {
				out = append(out, el)
			}
		}
		return true
	})
	return out
}

// OuterHTML serializes the element and its subtree.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	_ = html.Render(&b, e.node)
	return b.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
