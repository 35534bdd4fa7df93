package ui

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Item is one label/value row of an overview section
type Item struct {
	Label string
	Value string
	ID    string // element id of the value, empty for static rows
}

// Section is one titled block of the overview, or an error block
type Section struct {
	Title   string
	Items   []Item
	Message string // text of an error block
}

// Fragment is the terminal view of rendered overview markup
type Fragment struct {
	Sections []Section
	// Text holds the plain content when the markup has no sections
	// (the loading placeholder, for example)
	Text string
}

// HasID reports whether any row carries the given element id
func (f Fragment) HasID(id string) bool {
	for _, s := range f.Sections {
		for _, it := range s.Items {
			if it.ID == id {
				return true
			}
		}
	}
	return false
}

// ParseFragment converts overview markup into sections. Entities are
// decoded, so values come back as the device reported them.
func ParseFragment(markup string) (Fragment, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to parse overview markup: %w", err)
	}

	var frag Fragment
	for _, n := range nodes {
		collectSections(n, &frag.Sections)
	}
	if len(frag.Sections) == 0 {
		var b strings.Builder
		for _, n := range nodes {
			writeText(&b, n)
		}
		frag.Text = strings.TrimSpace(b.String())
	}
	return frag, nil
}

func collectSections(n *html.Node, out *[]Section) {
	if n.Type == html.ElementNode && hasClass(n, "section") {
		*out = append(*out, parseSection(n))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectSections(c, out)
	}
}

func parseSection(n *html.Node) Section {
	var s Section
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case c.DataAtom == atom.H2:
				s.Title = textOf(c)
				return
			case c.DataAtom == atom.P:
				s.Message = textOf(c)
				return
			case hasClass(c, "info-item"):
				s.Items = append(s.Items, parseItem(c))
				return
			}
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return s
}

func parseItem(n *html.Node) Item {
	var it Item
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case hasClass(c, "info-label"):
			it.Label = textOf(c)
		case hasClass(c, "info-value"):
			it.Value = textOf(c)
			it.ID = attr(c, "id")
		}
	}
	return it
}

func textOf(n *html.Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
