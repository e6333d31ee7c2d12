package ir

// FieldSlotSize is the per-field slot width used by the class layout
// algorithm: every field, regardless of declared type, occupies one
// 8-byte slot ( / original_source's uniform boxing of class
// fields).
const FieldSlotSize = 8

// MinClassSize is the minimum allocation size for any class instance,
// covering the header word even for classes with no fields.
const MinClassSize = 64

// FieldOffset records one field's byte offset within its class layout.
type FieldOffset struct {
	Name   string
	Offset int
}

// ClassLayout is the computed memory layout for a class: each field
// assigned a sequential 8-byte-aligned offset, with a 64-byte floor on
// the total instance size.
type ClassLayout struct {
	Name       string
	Fields     []FieldOffset
	TotalSize  int
	ParentName string
}

// NewClassLayout computes a layout for fieldNames in declaration order,
// optionally continuing after a parent layout's fields (single
// inheritance, fields of the base class retain their offsets).
func NewClassLayout(name string, fieldNames []string, parent *ClassLayout) *ClassLayout {
	layout := &ClassLayout{Name: name}
	offset := 0

	if parent != nil {
		layout.ParentName = parent.Name
		layout.Fields = append(layout.Fields, parent.Fields...)
		offset = len(parent.Fields) * FieldSlotSize
	}

	for _, f := range fieldNames {
		layout.Fields = append(layout.Fields, FieldOffset{Name: f, Offset: offset})
		offset += FieldSlotSize
	}

	if offset < MinClassSize {
		offset = MinClassSize
	}
	layout.TotalSize = offset
	return layout
}

// Offset returns the byte offset of the named field, and whether it was
// found.
func (c *ClassLayout) Offset(name string) (int, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}
