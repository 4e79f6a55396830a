package ops

import (
	ocio "github.com/IXgSoul/OpenColorIO"
)

// Element names and attribute keys used by transform tooling.
const (
	MetadataRoot        = "ROOT"
	MetadataDescription = "Description"

	MetadataNameAttribute = "name"
	MetadataIDAttribute   = "id"
)

// Attribute is a single name/value pair on a metadata element.
type Attribute struct {
	Name, Value string
}

// FormatMetadata is the descriptive information carried by an op: an element
// name, an optional text value, ordered attributes and child elements. It
// never affects how colors are transformed.
type FormatMetadata struct {
	ElementName string
	Value       string
	Attributes  []Attribute
	Children    []FormatMetadata
}

func NewFormatMetadata(elementName string) FormatMetadata {
	return FormatMetadata{ElementName: elementName}
}

// Attribute returns the value recorded for name, or "" when absent.
func (m *FormatMetadata) Attribute(name string) string {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// SetAttribute replaces the value recorded for name, appending a new
// attribute when none exists yet.
func (m *FormatMetadata) SetAttribute(name, value string) {
	for i := range m.Attributes {
		if m.Attributes[i].Name == name {
			m.Attributes[i].Value = value
			return
		}
	}
	m.Attributes = append(m.Attributes, Attribute{Name: name, Value: value})
}

func (m *FormatMetadata) AddChild(elementName, value string) {
	m.Children = append(m.Children, FormatMetadata{ElementName: elementName, Value: value})
}

func (m *FormatMetadata) Name() string        { return m.Attribute(MetadataNameAttribute) }
func (m *FormatMetadata) SetName(name string) { m.SetAttribute(MetadataNameAttribute, name) }
func (m *FormatMetadata) ID() string          { return m.Attribute(MetadataIDAttribute) }
func (m *FormatMetadata) SetID(id string)     { m.SetAttribute(MetadataIDAttribute, id) }

func (m *FormatMetadata) Clone() FormatMetadata {
	c := FormatMetadata{ElementName: m.ElementName, Value: m.Value}
	if len(m.Attributes) > 0 {
		c.Attributes = make([]Attribute, len(m.Attributes))
		copy(c.Attributes, m.Attributes)
	}
	if len(m.Children) > 0 {
		c.Children = make([]FormatMetadata, 0, len(m.Children))
		for i := range m.Children {
			c.Children = append(c.Children, m.Children[i].Clone())
		}
	}
	return c
}

func combine_text(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " + " + b
}

// Combine merges o into m: name and id attributes are joined with " + "
// (skipping empty sides), other attributes keep m's value when both carry
// one, and o's children are appended after m's. Both elements must have the
// same element name.
func (m *FormatMetadata) Combine(o *FormatMetadata) error {
	if m == o {
		return nil
	}
	if m.ElementName != o.ElementName {
		return ocio.ConfigErrorf("only metadata elements with the same name can be combined: %q vs %q",
			m.ElementName, o.ElementName)
	}
	m.Value = combine_text(m.Value, o.Value)
	for _, a := range o.Attributes {
		switch a.Name {
		case MetadataNameAttribute, MetadataIDAttribute:
			m.SetAttribute(a.Name, combine_text(m.Attribute(a.Name), a.Value))
		default:
			if m.Attribute(a.Name) == "" {
				m.SetAttribute(a.Name, a.Value)
			}
		}
	}
	for i := range o.Children {
		m.Children = append(m.Children, o.Children[i].Clone())
	}
	return nil
}

func (m *FormatMetadata) Equal(o *FormatMetadata) bool {
	if m.ElementName != o.ElementName || m.Value != o.Value {
		return false
	}
	if len(m.Attributes) != len(o.Attributes) || len(m.Children) != len(o.Children) {
		return false
	}
	for i, a := range m.Attributes {
		if o.Attributes[i] != a {
			return false
		}
	}
	for i := range m.Children {
		if !m.Children[i].Equal(&o.Children[i]) {
			return false
		}
	}
	return true
}
