// Package dom turns raw markup into a flat, document-order node stream.
//
// The stream is produced straight from the tokenizer rather than from a
// parsed tree, so hand-edited legacy pages are seen exactly in source order:
// nothing is reparented, closed implicitly or moved out of tables. The order
// matches a pre-order walk over the tree as the author wrote it.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	TextNode Kind = iota + 1
	CommentNode
	ElementNode
)

func (k Kind) String() string {
	switch k {
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ElementNode:
		return "element"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Attr is a single element attribute. Keys are lower-cased.
type Attr struct {
	Key string
	Val string
}

// Node is one entry of the stream. Data holds the text for TextNode, the
// comment body for CommentNode and the lower-cased tag name for ElementNode.
type Node struct {
	Kind  Kind
	Data  string
	Attrs []Attr
}

// Attr returns the value of the named attribute of an element node.
func (n Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Is reports whether n is an element with the given tag name.
func (n Node) Is(tag string) bool {
	return n.Kind == ElementNode && n.Data == tag
}

// Document is a parsed page.
type Document struct {
	nodes []Node
}

// Nodes returns the stream in document order. Callers must not modify it.
func (d *Document) Nodes() []Node {
	if d == nil {
		return nil
	}
	return d.nodes
}

// Elements returns every element with the given tag name in document order.
func (d *Document) Elements(tag string) []Node {
	var out []Node
	for _, n := range d.Nodes() {
		if n.Is(tag) {
			out = append(out, n)
		}
	}
	return out
}

// contents of these elements are script or style data, not page text
var rawTextTags = map[string]bool{
	"script": true,
	"style":  true,
}

// Parse tokenizes markup into a Document. It only fails when r fails;
// malformed markup is tolerated.
func Parse(r io.Reader) (*Document, error) {
	z := html.NewTokenizer(r)
	doc := &Document{}
	rawTag := ""
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenize: %w", err)
			}
			return doc, nil
		case html.TextToken:
			if rawTag != "" {
				continue
			}
			doc.nodes = append(doc.nodes, Node{Kind: TextNode, Data: string(z.Text())})
		case html.CommentToken:
			doc.nodes = append(doc.nodes, Node{Kind: CommentNode, Data: string(z.Text())})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			name := strings.ToLower(tok.Data)
			n := Node{Kind: ElementNode, Data: name}
			if len(tok.Attr) > 0 {
				n.Attrs = make([]Attr, 0, len(tok.Attr))
				for _, a := range tok.Attr {
					n.Attrs = append(n.Attrs, Attr{Key: strings.ToLower(a.Key), Val: a.Val})
				}
			}
			doc.nodes = append(doc.nodes, n)
			if tt == html.StartTagToken && rawTextTags[name] {
				rawTag = name
			}
		case html.EndTagToken:
			if rawTag != "" {
				name, _ := z.TagName()
				if strings.EqualFold(string(name), rawTag) {
					rawTag = ""
				}
			}
		}
	}
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) *Document {
	doc, _ := Parse(strings.NewReader(s))
	return doc
}
