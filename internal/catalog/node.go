// Package catalog reads a vehicle-catalog XML export and turns it into
// catalog records.
//
// The export is a fixed hierarchy:
//
//	<catalog>
//	  <mark name="Toyota">
//	    <code>TOYOTA</code>
//	    <folder name="Camry" id="G1">
//	      <model>CAMRY</model>
//	      <modification name="2.5 AT (181 л.с.) FWD" id="M1">
//	        <body_type>Седан</body_type>
//	        <years>2018 - 2023</years>
//	      </modification>
//	    </folder>
//	  </mark>
//	</catalog>
//
// Decoding happens in three steps: Decode builds an in-memory element tree,
// Walk reads brands, models and modifications out of it, and Collect runs
// extraction and enrichment over the walked nodes.
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Node is a generic XML element.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// Decode reads a whole XML document into memory and returns its root element.
//
// Documents declaring a non UTF-8 encoding in their prolog (windows-1251,
// koi8-r, ...) are transcoded on the fly. A non-empty forceEncoding overrides
// the declared encoding.
func Decode(r io.Reader, forceEncoding string) (*Node, error) {
	forced := false
	if forceEncoding != "" {
		enc, err := htmlindex.Get(forceEncoding)
		if err != nil {
			return nil, fmt.Errorf("unknown input encoding %q: %w", forceEncoding, err)
		}
		r = enc.NewDecoder().Reader(r)
		forced = true
	}

	d := xml.NewDecoder(r)
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if forced {
			return input, nil
		}
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var root Node
	if err := d.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse catalog XML: %w", err)
	}
	return &root, nil
}

// Name returns the local name of the element.
func (n *Node) Name() string {
	return n.XMLName.Local
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for i := range n.Children {
		if n.Children[i].Name() == name {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first direct child with the
// given name. ok is false when the child is missing or has no text.
func (n *Node) ChildText(name string) (text string, ok bool) {
	child := n.Child(name)
	if child == nil {
		return "", false
	}
	text = strings.TrimSpace(child.Text)
	return text, text != ""
}

// Descendants returns every element below n with the given name, in document
// order. n itself is never included.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(parent *Node) {
		for i := range parent.Children {
			child := &parent.Children[i]
			if child.Name() == name {
				out = append(out, child)
			}
			visit(child)
		}
	}
	visit(n)
	return out
}
