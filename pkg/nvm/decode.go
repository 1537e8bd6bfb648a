package nvm

import "fmt"

// SchemaLengthError reports a buffer whose size disagrees with the schema.
type SchemaLengthError struct {
	SchemaBits int
	BufferBits int
}

func (e *SchemaLengthError) Error() string {
	return fmt.Sprintf("nvm: schema is %d bits (%d bytes) but input is %d bits (%d bytes)",
		e.SchemaBits, (e.SchemaBits+7)/8, e.BufferBits, e.BufferBits/8)
}

// Value is a decoded field.
type Value struct {
	Name  string
	Width int
	Value uint64
}

// Max returns the largest value the field can hold.
func (v Value) Max() uint64 {
	if v.Width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(v.Width) - 1
}

// Values keeps decoded fields in schema order.
type Values []Value

// Map returns the fields keyed by name.
func (vs Values) Map() map[string]uint64 {
	m := make(map[string]uint64, len(vs))
	for _, v := range vs {
		m[v.Name] = v.Value
	}
	return m
}

// Get returns the value of the named field.
func (vs Values) Get(name string) (uint64, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// Decode unpacks buf according to s, starting at the most significant bit
// of buf[0]. The schema must cover buf exactly.
func Decode(buf []byte, s Schema) (Values, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Bits() != 8*len(buf) {
		return nil, &SchemaLengthError{SchemaBits: s.Bits(), BufferBits: 8 * len(buf)}
	}

	out := make(Values, 0, len(s))
	pos := 0
	for _, f := range s {
		var v uint64
		for i := 0; i < f.Width; i++ {
			bit := (buf[pos/8] >> (7 - uint(pos%8))) & 1
			v = v<<1 | uint64(bit)
			pos++
		}
		out = append(out, Value{Name: f.Name, Width: f.Width, Value: v})
	}
	return out, nil
}
