// Package schema declares the closed set of document node types: their
// attributes, nesting rules, and whether they are atomic. The document model
// and codec consult a Registry for every structural decision, so adding a
// node type is a single Register call.
package schema

import "fmt"

// Content describes what a node type may contain.
type Content int

const (
	// ContentNone marks leaf types (text, divider, mention).
	ContentNone Content = iota
	// ContentInline marks textblock types whose children are inline nodes.
	ContentInline
	// ContentBlocks marks container types whose children are block nodes.
	ContentBlocks
)

// Group places a node type on one side of the block/inline split.
type Group int

const (
	GroupBlock Group = iota
	GroupInline
)

// AttrSpec declares one attribute of a node type. Missing attributes are
// filled with Default on deserialize; Required attributes without a value
// make the node invalid.
type AttrSpec struct {
	Name     string
	Default  any
	Required bool
}

// Spec is the registered description of a node type.
type Spec struct {
	Content Content
	Group   Group
	Atomic  bool // selected/deleted as a unit, never entered for editing
	Attrs   []AttrSpec
	// AllowedParents restricts which container types may hold this type.
	// Empty means any container whose Content accepts this Group.
	AllowedParents []string
}

// Registry maps node type names to their specs.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry returns an empty registry. Most callers want DefaultRegistry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds or replaces the spec for a node type.
func (r *Registry) Register(typ string, spec Spec) {
	r.specs[typ] = spec
}

// Lookup returns the spec for typ and whether it is registered.
func (r *Registry) Lookup(typ string) (Spec, bool) {
	s, ok := r.specs[typ]
	return s, ok
}

// Atomic reports whether typ is a registered atomic type.
func (r *Registry) Atomic(typ string) bool {
	s, ok := r.specs[typ]
	return ok && s.Atomic
}

// Allowed reports whether a child of type childTyp may be placed directly
// under a parent of type parentTyp.
func (r *Registry) Allowed(parentTyp, childTyp string) error {
	parent, ok := r.specs[parentTyp]
	if !ok {
		return fmt.Errorf("unknown parent type %q", parentTyp)
	}
	child, ok := r.specs[childTyp]
	if !ok {
		return fmt.Errorf("unknown child type %q", childTyp)
	}

	switch parent.Content {
	case ContentNone:
		return fmt.Errorf("%q is a leaf type and cannot hold children", parentTyp)
	case ContentInline:
		if child.Group != GroupInline {
			return fmt.Errorf("%q only holds inline content, not %q", parentTyp, childTyp)
		}
	case ContentBlocks:
		if child.Group != GroupBlock {
			return fmt.Errorf("%q only holds block content, not %q", parentTyp, childTyp)
		}
	}

	if len(child.AllowedParents) > 0 {
		for _, p := range child.AllowedParents {
			if p == parentTyp {
				return nil
			}
		}
		return fmt.Errorf("%q may not appear under %q", childTyp, parentTyp)
	}
	return nil
}

// FillDefaults returns attrs with every declared-but-missing attribute set to
// its default. The input map is not modified. An error is returned when a
// Required attribute has neither a value nor a default.
func (r *Registry) FillDefaults(typ string, attrs map[string]any) (map[string]any, error) {
	spec, ok := r.specs[typ]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", typ)
	}
	if len(spec.Attrs) == 0 {
		return attrs, nil
	}

	out := attrs
	copied := false
	for _, a := range spec.Attrs {
		if attrs != nil {
			if _, present := attrs[a.Name]; present {
				continue
			}
		}
		if a.Default == nil {
			if a.Required {
				return nil, fmt.Errorf("type %q: missing required attr %q", typ, a.Name)
			}
			continue
		}
		if !copied {
			out = make(map[string]any, len(attrs)+len(spec.Attrs))
			for k, v := range attrs {
				out[k] = v
			}
			copied = true
		}
		out[a.Name] = a.Default
	}
	return out, nil
}

// Node type names used across the engine.
const (
	TypeDoc        = "doc"
	TypeText       = "text"
	TypeParagraph  = "paragraph"
	TypeHeading    = "heading"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeQuote      = "blockquote"
	TypeCodeBlock  = "codeBlock"
	TypeDivider    = "divider"
	TypeTable      = "table"
	TypeTableRow   = "tableRow"
	TypeTableCell  = "tableCell"
	TypeCallout    = "callout"
	TypeToggle     = "toggle"
	TypeColumns    = "columns"
	TypeColumn     = "column"
	TypeMention    = "mention"
)

// DefaultRegistry returns the registry with every node type the editor ships.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(TypeDoc, Spec{Content: ContentBlocks})
	r.Register(TypeText, Spec{Content: ContentNone, Group: GroupInline})

	r.Register(TypeParagraph, Spec{Content: ContentInline})
	r.Register(TypeHeading, Spec{
		Content: ContentInline,
		Attrs:   []AttrSpec{{Name: "level", Default: 1}},
	})
	r.Register(TypeQuote, Spec{Content: ContentBlocks})
	r.Register(TypeCodeBlock, Spec{
		Content: ContentInline,
		Attrs:   []AttrSpec{{Name: "language", Default: ""}},
	})
	r.Register(TypeDivider, Spec{Content: ContentNone})

	r.Register(TypeBulletList, Spec{Content: ContentBlocks})
	r.Register(TypeListItem, Spec{
		Content:        ContentBlocks,
		AllowedParents: []string{TypeBulletList},
	})

	r.Register(TypeTable, Spec{Content: ContentBlocks})
	r.Register(TypeTableRow, Spec{
		Content:        ContentBlocks,
		AllowedParents: []string{TypeTable},
	})
	r.Register(TypeTableCell, Spec{
		Content:        ContentInline,
		AllowedParents: []string{TypeTableRow},
		Attrs: []AttrSpec{
			{Name: "columnType", Default: "text"},
			{Name: "cellValue", Default: ""},
		},
	})

	r.Register(TypeCallout, Spec{
		Content: ContentBlocks,
		Attrs:   []AttrSpec{{Name: "icon", Default: "💡"}},
	})
	r.Register(TypeToggle, Spec{
		Content: ContentBlocks,
		Attrs:   []AttrSpec{{Name: "open", Default: true}},
	})
	r.Register(TypeColumns, Spec{Content: ContentBlocks})
	r.Register(TypeColumn, Spec{
		Content:        ContentBlocks,
		AllowedParents: []string{TypeColumns},
	})

	r.Register(TypeMention, Spec{
		Content: ContentNone,
		Atomic:  true,
		Attrs: []AttrSpec{
			{Name: "kind", Required: true},
			{Name: "recordId", Required: true},
			{Name: "title", Default: ""},
			{Name: "subtitle", Default: ""},
			{Name: "status", Default: ""},
			{Name: "score", Default: nil},
			{Name: "date", Default: ""},
			{Name: "extra", Default: nil},
		},
	})

	return r
}
