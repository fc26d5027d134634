package graph

import (
	"bytes"
	"errors"

	"github.com/linuxmatters/ladspa-source/internal/props"
)

// Errors returned when building a document.
var (
	ErrMissingPlugin = errors.New("missing plugin")
	ErrMissingLabel  = errors.New("missing label")
)

// Keys read from the module properties to describe the LADSPA node.
const (
	KeyPlugin  = "plugin"
	KeyLabel   = "label"
	KeyInputs  = "inputs"
	KeyOutputs = "outputs"
)

// NodeTypeLADSPA is the filter-chain node type for LADSPA plugins.
const NodeTypeLADSPA = "ladspa"

// Node describes one plugin instance of the filter graph.
type Node struct {
	Type   string
	Plugin string
	Label  string

	// Inputs and Outputs are inserted verbatim into list position when set.
	Inputs  *string
	Outputs *string
}

// Document is the filter-chain configuration: the module properties
// flattened at the top level, the filter graph, and the two endpoint bags.
type Document struct {
	Module   *props.Props
	Nodes    []Node
	Capture  *props.Props
	Playback *props.Props
}

// NewLADSPA builds a single-node document from the module properties.
// plugin and label are required.
func NewLADSPA(module, capture, playback *props.Props) (*Document, error) {
	plugin, ok := module.Get(KeyPlugin)
	if !ok {
		return nil, ErrMissingPlugin
	}
	label, ok := module.Get(KeyLabel)
	if !ok {
		return nil, ErrMissingLabel
	}

	node := Node{Type: NodeTypeLADSPA, Plugin: plugin, Label: label}
	if v, ok := module.Get(KeyInputs); ok {
		node.Inputs = &v
	}
	if v, ok := module.Get(KeyOutputs); ok {
		node.Outputs = &v
	}

	return &Document{
		Module:   module,
		Nodes:    []Node{node},
		Capture:  capture,
		Playback: playback,
	}, nil
}

// Render serialises the document into the filter-chain argument string.
func (d *Document) Render() string {
	var buf bytes.Buffer

	buf.WriteString("{")
	writeProps(&buf, d.Module)
	buf.WriteString(" filter.graph = { nodes = [")
	for _, n := range d.Nodes {
		writeNode(&buf, n)
	}
	buf.WriteString(" ] }")
	buf.WriteString(" capture.props = {")
	writeProps(&buf, d.Capture)
	buf.WriteString(" } playback.props = {")
	writeProps(&buf, d.Playback)
	buf.WriteString(" } }")

	return buf.String()
}

func writeNode(buf *bytes.Buffer, n Node) {
	buf.WriteString(" { type = ")
	buf.WriteString(n.Type)
	buf.WriteString(" plugin = ")
	buf.WriteString(Quote(n.Plugin))
	buf.WriteString(" label = ")
	buf.WriteString(Quote(n.Label))
	if n.Inputs != nil {
		buf.WriteString(" inputs = [ ")
		buf.WriteString(*n.Inputs)
		buf.WriteString(" ]")
	}
	if n.Outputs != nil {
		buf.WriteString(" outputs = [ ")
		buf.WriteString(*n.Outputs)
		buf.WriteString(" ]")
	}
	buf.WriteString(" }")
}

func writeProps(buf *bytes.Buffer, p *props.Props) {
	for _, it := range p.Items() {
		buf.WriteString(" ")
		buf.WriteString(Quote(it.Key))
		buf.WriteString(" = ")
		buf.WriteString(ClassifyString(it.Value).Render())
	}
}
