package host

import (
	"fmt"

	"github.com/linuxmatters/ladspa-source/internal/graph"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Media classes of the two filter-chain endpoints when none is given
const (
	defaultCaptureClass  = "Stream/Input/Audio"
	defaultPlaybackClass = "Stream/Output/Audio"
)

// loadFilterChain validates a filter-chain document and exposes its capture
// stream and its playback side as nodes.
func loadFilterChain(h *Host, m *ImplModule, args string) error {
	doc, err := graph.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	fg, ok := doc.Object("filter.graph")
	if !ok {
		return fmt.Errorf("%w: missing filter.graph", ErrInvalidArgument)
	}
	nodes, ok := fg.Array("nodes")
	if !ok || len(nodes) == 0 {
		return fmt.Errorf("%w: filter.graph has no nodes", ErrInvalidArgument)
	}
	for i, v := range nodes {
		node, ok := v.(*graph.Object)
		if !ok {
			return fmt.Errorf("%w: node %d is not an object", ErrInvalidArgument, i)
		}
		for _, key := range []string{"type", graph.KeyPlugin, graph.KeyLabel} {
			if s, ok := node.String(key); !ok || s == "" {
				return fmt.Errorf("%w: node %d has no %s", ErrInvalidArgument, i, key)
			}
		}
	}

	base, _ := doc.String(props.KeyNodeName)
	if base == "" {
		base = fmt.Sprintf("filter-chain-%d", m.ID)
	}

	capture := scalarProps(doc, "capture.props")
	playback := scalarProps(doc, "playback.props")

	h.addNode(m, nodeName(capture, "input."+base), mediaClass(capture, defaultCaptureClass), capture)
	h.addNode(m, nodeName(playback, base), mediaClass(playback, defaultPlaybackClass), playback)
	return nil
}

// scalarProps copies the scalar members of the object under key
func scalarProps(doc *graph.Object, key string) *props.Props {
	p := props.New()
	obj, ok := doc.Object(key)
	if !ok {
		return p
	}
	for _, mem := range obj.Members {
		if s, ok := graph.Text(mem.Value); ok {
			p.Set(mem.Key, s)
		}
	}
	return p
}

func nodeName(p *props.Props, fallback string) string {
	if s, ok := p.Get(props.KeyNodeName); ok && s != "" {
		return s
	}
	return fallback
}

func mediaClass(p *props.Props, fallback string) string {
	if s, ok := p.Get(props.KeyMediaClass); ok && s != "" {
		return s
	}
	return fallback
}
