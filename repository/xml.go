package repository

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// node is a minimal generic FHIR-XML element: a name, its attributes (FHIR
// XML stores primitive values as a `value` attribute, not text content), and
// its children in document order. It exists only for the duration of one
// parse — it is never retained by the Repository (spec.md §9 "SAX builder
// driving": all state is local to the parse and never escapes).
type node struct {
	name     string
	attrs    map[string]string
	children []*node
}

func (n *node) attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// child returns the first child named name, or nil.
func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childrenNamed returns every child named name, in document order.
func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// choiceChild finds the single child whose name begins with prefix (the
// FHIR "value[x]"-style choice element convention, e.g. prefix="fixed" finds
// "fixedCode") and returns the child plus the type-code suffix.
func (n *node) choiceChild(prefix string) (*node, string) {
	for _, c := range n.children {
		if len(c.name) > len(prefix) && c.name[:len(prefix)] == prefix {
			return c, c.name[len(prefix):]
		}
	}
	return nil, ""
}

// LoadDirectory visits every regular file directly inside dir (non-recursive,
// per spec.md §4.1 "Loading") and loads each as a FHIR XML document, adding
// recognized resources to the repository. Unrecognized resource types
// (e.g. NamingSystem) are ignored.
func (r *Repository) LoadDirectory(dir string, logger zerolog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading conformance directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.loadFile(path, logger); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

func (r *Repository) loadFile(path string, logger zerolog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	root, err := parseXML(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, resourceNode := range unwrapBundle(root) {
		if err := r.loadResourceNode(resourceNode, logger); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// unwrapBundle returns the resource nodes a file's root element carries: the
// root itself if it is a recognized resource, or each entry/resource child's
// sole child if the root is a Bundle.
func unwrapBundle(root *node) []*node {
	if root.name != "Bundle" {
		return []*node{root}
	}
	var out []*node
	for _, entry := range root.childrenNamed("entry") {
		if res := entry.child("resource"); res != nil {
			out = append(out, res.children...)
		}
	}
	return out
}

func (r *Repository) loadResourceNode(n *node, logger zerolog.Logger) error {
	switch n.name {
	case "StructureDefinition":
		sd, slices, err := decodeStructureDefinition(n)
		if err != nil {
			return err
		}
		if err := r.AddStructureDefinition(sd); err != nil {
			return err
		}
		for _, s := range slices {
			if err := r.AddStructureDefinition(s); err != nil {
				return err
			}
		}
		return nil
	case "CodeSystem":
		cs, err := decodeCodeSystem(n)
		if err != nil {
			return err
		}
		return r.AddCodeSystem(cs)
	case "ValueSet":
		vs, err := decodeValueSet(n)
		if err != nil {
			return err
		}
		return r.AddValueSet(vs)
	default:
		logger.Debug().Str("resourceType", n.name).Msg("ignoring unrecognized resource type")
		return nil
	}
}

// parseXML drives encoding/xml.Decoder.Token() to build one generic node
// tree per document, using a local element stack as the state machine
// (spec.md §9 "SAX builder driving").
func parseXML(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml parse error at byte %d: %w", dec.InputOffset(), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.children = append(top.children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %q at byte %d", t.Name.Local, dec.InputOffset())
			}
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

func attrInt(n *node, name string) (int, bool) {
	v, ok := n.attr(name)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func attrBool(n *node, name string) bool {
	v, _ := n.attr(name)
	return v == "true"
}
