package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Workflow is a parsed workflow definition as read from a template file.
// It is immutable after parsing; the raw form of every node is retained so
// heuristics can scan the full serialized content.
type Workflow struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Nodes       []Node                     `json:"nodes"`
	Connections map[string]json.RawMessage `json:"connections"`
}

// Node is a single typed unit within a workflow. Only the type identifier is
// interpreted; everything else is opaque and kept in raw form.
type Node struct {
	Type string
	raw  json.RawMessage
}

// NewNode builds a node from a type identifier alone. Used by tests and by
// callers that synthesize definitions; parsed nodes carry their raw bytes.
func NewNode(nodeType string) Node {
	return Node{Type: nodeType}
}

// UnmarshalJSON keeps the node's raw bytes alongside the parsed type identifier.
func (n *Node) UnmarshalJSON(data []byte) error {
	var typed struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	n.Type = typed.Type
	n.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the node exactly as it appeared in the source definition.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.raw == nil {
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: n.Type})
	}
	return n.raw, nil
}

// Raw returns the node's original serialized form, or a minimal synthesized
// one when the node was not parsed from source bytes.
func (n Node) Raw() []byte {
	if n.raw == nil {
		b, _ := n.MarshalJSON()
		return b
	}
	return n.raw
}

// ErrNotWorkflow is returned when a document parses as JSON but lacks the
// basic structure of a workflow definition.
var ErrNotWorkflow = errors.New("document is not a workflow definition")

// ParseWorkflow parses raw template bytes into a Workflow. Beyond basic
// structure (an object carrying a nodes list or a connections map) no schema
// validation is performed; malformed definitions are skipped by the caller.
func ParseWorkflow(data []byte) (*Workflow, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var wf Workflow
	if err := dec.Decode(&wf); err != nil {
		return nil, err
	}
	if wf.Nodes == nil && wf.Connections == nil {
		return nil, ErrNotWorkflow
	}
	return &wf, nil
}

// ConnectionCount is the sum of per-node outgoing link counts. Connection
// values vary in shape between definitions: a flat link list contributes its
// length, an object keyed by output port (the common exported form) its key
// count, and anything else zero.
func (w *Workflow) ConnectionCount() int {
	total := 0
	for _, links := range w.Connections {
		total += countLinks(links)
	}
	return total
}

func countLinks(raw json.RawMessage) int {
	var seq []json.RawMessage
	if err := json.Unmarshal(raw, &seq); err == nil {
		return len(seq)
	}
	var ports map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ports); err == nil {
		return len(ports)
	}
	return 0
}
