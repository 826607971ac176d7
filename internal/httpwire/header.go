package httpwire

import "strings"

// Field is one header name/value pair.
type Field struct {
	Name  string
	Value string
}

// Header is an order-preserving header collection. Lookups are
// case-insensitive, but names keep the casing they were added with and
// duplicate names are preserved in insertion order. A native map would
// lose both properties, so transmission and reporting stay faithful to
// what actually crossed the wire.
type Header struct {
	fields []Field
}

// Add appends a field, keeping insertion order and duplicates.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Get returns the first value for name, matched case-insensitively.
func (h *Header) Get(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value recorded for name, in order.
func (h *Header) Values(name string) []string {
	if h == nil {
		return nil
	}
	var vals []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Has reports whether at least one field with the given name exists.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Fields returns the stored fields in insertion order. The slice is
// shared; callers must not mutate it.
func (h *Header) Fields() []Field {
	if h == nil {
		return nil
	}
	return h.fields
}

// Len returns the number of stored fields, counting duplicates.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}
