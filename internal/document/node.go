// Package document builds the layout-independent node tree of a rendered CV.
// The tree holds user text verbatim; escaping is the job of whoever turns it
// into markup.
package document

import (
	"strings"

	"github.com/jonathan/cv-wizard/internal/types"
)

// Kind is the type of a node.
type Kind string

// Node kinds.
const (
	KindBlock     Kind = "block"
	KindSection   Kind = "section"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindField     Kind = "field"
	KindList      Kind = "list"
	KindItem      Kind = "item"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindLink      Kind = "link"
	KindDateRange Kind = "daterange"
)

// Contact icons.
const (
	IconEmail    = "email"
	IconPhone    = "phone"
	IconLink     = "link"
	IconWebsite  = "website"
	IconLocation = "location"
)

// Node is one element of the document tree.
type Node struct {
	Kind Kind `json:"kind"`
	// Role names the node's place in the layout ("sidebar", "contact",
	// "timeline", "meta", ...). Renderers map it to styling.
	Role string `json:"role,omitempty"`
	// Title is the heading of a section.
	Title string `json:"title,omitempty"`
	// Level is the heading level.
	Level int    `json:"level,omitempty"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Href  string `json:"href,omitempty"`
	Src   string `json:"src,omitempty"`
	// Strong marks text rendered with emphasis.
	Strong   bool    `json:"strong,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Document is the rendered CV for one template.
type Document struct {
	Template types.TemplateID `json:"template"`
	Layout   types.Layout     `json:"layout"`
	Root     *Node            `json:"root"`
}

func (n *Node) add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// PlainText concatenates every text-bearing value below n, one per line.
func (n *Node) PlainText() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		for _, s := range []string{c.Title, c.Label, c.Text} {
			if s != "" {
				b.WriteString(s)
				b.WriteByte('\n')
			}
		}
		return true
	})
	return b.String()
}

// Sections returns every section of the document in tree order.
func (d *Document) Sections() []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node) bool {
		if n.Kind == KindSection {
			out = append(out, n)
		}
		return true
	})
	return out
}

// SectionTitles returns the titles of every section in tree order.
func (d *Document) SectionTitles() []string {
	sections := d.Sections()
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}

// Section returns the first section titled title, or nil.
func (d *Document) Section(title string) *Node {
	for _, s := range d.Sections() {
		if s.Title == title {
			return s
		}
	}
	return nil
}

// Images returns the src of every image node.
func (d *Document) Images() []string {
	var out []string
	d.Root.Walk(func(n *Node) bool {
		if n.Kind == KindImage {
			out = append(out, n.Src)
		}
		return true
	})
	return out
}
