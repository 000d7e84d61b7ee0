package employee

import (
	"fmt"
)

// Record is an ordered mapping from column name to value. Integer columns
// hold an int, category columns hold a string. A record is built for one
// prediction and then discarded.
type Record struct {
	names  []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any, FieldCount)}
}

// DefaultRecord returns a record filled with the form defaults in schema order.
func DefaultRecord() *Record {
	r := NewRecord()
	for _, f := range Fields {
		r.Set(f.Name, f.Default)
	}
	return r
}

// Set stores v under name. Setting an existing name keeps its position.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Delete removes name from the record.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Names returns the column names in insertion order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.names) }

// Map returns a copy of the values keyed by column name.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// CheckShape verifies that r has exactly the schema's columns, in order,
// with values of the right kind. Domains are not checked here.
func (s Schema) CheckShape(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrSchemaMismatch)
	}
	for _, name := range r.names {
		if _, ok := s.Lookup(name); !ok {
			return fmt.Errorf("%w: %w: %q", ErrSchemaMismatch, ErrUnknownField, name)
		}
	}
	for _, f := range s {
		if _, ok := r.values[f.Name]; !ok {
			return fmt.Errorf("%w: %w: %q", ErrSchemaMismatch, ErrMissingField, f.Name)
		}
	}
	for i, f := range s {
		if r.names[i] != f.Name {
			return fmt.Errorf("%w: %w: position %d is %q, want %q", ErrSchemaMismatch, ErrFieldOrder, i, r.names[i], f.Name)
		}
		v := r.values[f.Name]
		switch f.Kind {
		case KindInteger:
			if _, ok := v.(int); !ok {
				return fmt.Errorf("%w: %w: %q is %T, want int", ErrSchemaMismatch, ErrFieldType, f.Name, v)
			}
		case KindCategory:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%w: %w: %q is %T, want string", ErrSchemaMismatch, ErrFieldType, f.Name, v)
			}
		}
	}
	return nil
}
