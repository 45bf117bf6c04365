package fstore

import "encoding/json"

func init() {
	RegisterCodec(jsonCodec{})
}

// jsonCodec stores values as indented JSON so files stay readable
// and diffable.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Ext() string  { return ".json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
