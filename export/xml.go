// Package export writes the betting tree in formats meant for inspection:
// a nested XML document and graphviz renderings.
package export

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
)

var nodeName = xml.Name{Local: "Node"}

// WriteXML writes the tree as nested <Node value="..."> elements, one per
// tree node, in the order children are stored.
func WriteXML(w io.Writer, t *holdem.Tree) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := writeNode(enc, t, t.Root); err != nil {
		return errors.Wrap(err, "writing tree xml")
	}

	return enc.Flush()
}

func writeNode(enc *xml.Encoder, t *holdem.Tree, id holdem.NodeID) error {
	node := t.Node(id)
	start := xml.StartElement{
		Name: nodeName,
		Attr: []xml.Attr{{Name: xml.Name{Local: "value"}, Value: node.String()}},
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for _, child := range node.Children {
		if err := writeNode(enc, t, child); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}
