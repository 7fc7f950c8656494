package dsl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/graph"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidFixture is returned when a fixture fails structural validation.
	ErrInvalidFixture = errors.New("invalid fixture")
	// ErrUnknownRef is returned when a link, edge or start names an undeclared label.
	ErrUnknownRef = errors.New("unknown node reference")
)

var validate = validator.New()

// Fixture is a serializable graph description.
type Fixture struct {
	Name  string     `yaml:"name,omitempty" json:"name,omitempty"`
	Start string     `yaml:"start,omitempty" json:"start,omitempty"`
	Nodes []NodeSpec `yaml:"nodes" json:"nodes" validate:"unique=ID,dive"`
	Edges [][]string `yaml:"edges,omitempty" json:"edges,omitempty" validate:"dive,len=2,dive,required"`
}

// NodeSpec declares one node by its local label.
type NodeSpec struct {
	ID    string   `yaml:"id" json:"id" validate:"required"`
	X     float64  `yaml:"x,omitempty" json:"x,omitempty"`
	Y     float64  `yaml:"y,omitempty" json:"y,omitempty"`
	Links []string `yaml:"links,omitempty" json:"links,omitempty" validate:"dive,required"`
}

// Target is the part of a graph store a fixture writes to.
type Target interface {
	AddNodeAt(pos domain.Position) string
	AddEdge(a, b string) (bool, error)
}

// Parse decodes a fixture document. Documents starting with '{' are read
// as JSON, anything else as YAML. Unknown fields are rejected.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(trimmed))
		dec.KnownFields(true)
		if err := dec.Decode(&fx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
		}
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// FromView exports a graph snapshot as a fixture, using node IDs as labels.
// Each edge is listed once, on its first endpoint in creation order.
func FromView(name string, v graph.View) *Fixture {
	fx := &Fixture{Name: name, Nodes: make([]NodeSpec, 0, len(v.Nodes))}
	index := make(map[string]int, len(v.Nodes))
	for i, n := range v.Nodes {
		index[n.ID] = i
		fx.Nodes = append(fx.Nodes, NodeSpec{ID: n.ID, X: n.Position.X, Y: n.Position.Y})
	}
	for _, e := range v.Edges {
		a, b := e.A, e.B
		if index[b] < index[a] {
			a, b = b, a
		}
		spec := &fx.Nodes[index[a]]
		spec.Links = append(spec.Links, b)
	}
	return fx
}

// Validate checks field constraints and that every reference names a
// declared label.
func (f *Fixture) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	labels := f.Labels()
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}
	check := func(ref, where string) error {
		if !known[ref] {
			return fmt.Errorf("%w: %q (%s)", ErrUnknownRef, ref, where)
		}
		return nil
	}

	if f.Start != "" {
		if err := check(f.Start, "start"); err != nil {
			return err
		}
	}
	for _, n := range f.Nodes {
		for _, l := range n.Links {
			if err := check(l, "links of "+n.ID); err != nil {
				return err
			}
		}
	}
	for i, e := range f.Edges {
		for _, l := range e {
			if err := check(l, fmt.Sprintf("edge %d", i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Labels returns the declared labels in declaration order.
func (f *Fixture) Labels() []string {
	out := make([]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		out = append(out, n.ID)
	}
	return out
}

// Pairs returns every declared edge as label pairs: node links first, in
// declaration order, then the explicit edge list.
func (f *Fixture) Pairs() [][2]string {
	var out [][2]string
	for _, n := range f.Nodes {
		for _, l := range n.Links {
			out = append(out, [2]string{n.ID, l})
		}
	}
	for _, e := range f.Edges {
		out = append(out, [2]string{e[0], e[1]})
	}
	return out
}

// Apply validates the fixture and then writes it to t, allocating one node
// per label. It returns the label-to-ID mapping. Nothing is written when
// validation fails.
func (f *Fixture) Apply(t Target) (map[string]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(f.Nodes))
	for _, n := range f.Nodes {
		ids[n.ID] = t.AddNodeAt(domain.Position{X: n.X, Y: n.Y})
	}
	for _, p := range f.Pairs() {
		if _, err := t.AddEdge(ids[p[0]], ids[p[1]]); err != nil {
			return ids, fmt.Errorf("failed to link %s and %s: %w", p[0], p[1], err)
		}
	}
	return ids, nil
}

// YAML encodes the fixture as a YAML document.
func (f *Fixture) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f Fixture) clone() *Fixture {
	c := f
	c.Nodes = make([]NodeSpec, len(f.Nodes))
	for i, n := range f.Nodes {
		n.Links = append([]string(nil), n.Links...)
		c.Nodes[i] = n
	}
	c.Edges = make([][]string, len(f.Edges))
	for i, e := range f.Edges {
		c.Edges[i] = append([]string(nil), e...)
	}
	return &c
}
