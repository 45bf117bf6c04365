package fstore

import "fmt"

func init() {
	RegisterCodec(textCodec{})
}

// textCodec stores raw strings without any framing. It only accepts
// string-shaped values.
type textCodec struct{}

func (textCodec) Name() string { return "text" }
func (textCodec) Ext() string  { return ".txt" }

func (textCodec) Marshal(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case fmt.Stringer:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("text format requires a string value, got %T", v)
}

func (textCodec) Unmarshal(data []byte, v any) error {
	switch out := v.(type) {
	case *string:
		*out = string(data)
		return nil
	case *[]byte:
		*out = append((*out)[:0], data...)
		return nil
	}
	return fmt.Errorf("text format requires a *string destination, got %T", v)
}
