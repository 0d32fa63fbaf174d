package export

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
)

// Format names accepted by RenderGraph.
var formats = map[string]graphviz.Format{
	"dot": graphviz.XDOT,
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
}

// ParseFormat maps a file extension to a graphviz output format.
func ParseFormat(name string) (graphviz.Format, error) {
	f, ok := formats[name]
	if !ok {
		return "", errors.Errorf("unsupported graph format %q", name)
	}

	return f, nil
}

// RenderGraph renders the tree down to maxDepth (all of it if maxDepth is
// negative) in the given format. Edges are labelled with action codes.
func RenderGraph(ctx context.Context, w io.Writer, t *holdem.Tree, format graphviz.Format, maxDepth int) error {
	g, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(err, "initializing graphviz")
	}
	defer g.Close()

	graph, err := g.Graph()
	if err != nil {
		return errors.Wrap(err, "creating graph")
	}
	defer graph.Close()

	r := &renderer{graph: graph, tree: t, maxDepth: maxDepth}
	if _, err := r.addNode(t.Root, 0); err != nil {
		return err
	}

	glog.V(1).Infof("Rendering %d graph nodes as %s", r.n, format)
	if err := g.Render(ctx, graph, format, w); err != nil {
		return errors.Wrap(err, "rendering graph")
	}

	return nil
}

type renderer struct {
	graph    *cgraph.Graph
	tree     *holdem.Tree
	maxDepth int
	n        int
}

func (r *renderer) addNode(id holdem.NodeID, depth int) (*cgraph.Node, error) {
	node := r.tree.Node(id)
	gn, err := r.graph.CreateNodeByName(fmt.Sprintf("n%d", id))
	if err != nil {
		return nil, errors.Wrapf(err, "creating node %d", id)
	}

	r.n++
	gn.SetLabel(node.String())
	if node.IsTerminal() {
		gn.SetShape(cgraph.BoxShape)
	}

	if r.maxDepth >= 0 && depth >= r.maxDepth {
		return gn, nil
	}

	for _, child := range node.Children {
		gc, err := r.addNode(child, depth+1)
		if err != nil {
			return nil, err
		}

		e, err := r.graph.CreateEdgeByName(fmt.Sprintf("e%d", child), gn, gc)
		if err != nil {
			return nil, errors.Wrapf(err, "creating edge to %d", child)
		}
		e.SetLabel(r.tree.Node(child).Action.Code())
	}

	return gn, nil
}
