// Package fstore provides a file-backed store of encoded values, one
// file per key. Values are serialized through a pluggable codec and
// reads are served from a bounded in-memory cache.
package fstore

import (
	"sort"

	yuerrors "github.com/nanw1103/yumako/internal/errors"
)

// Codec serializes values for storage.
type Codec interface {
	// Name is the format name used to select the codec ("json", "yaml").
	Name() string
	// Ext is the file extension including the dot (".json").
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// codecs holds registered codecs by format name.
var codecs = make(map[string]Codec)

// RegisterCodec adds a codec for its format name.
// This should be called during init() by each codec implementation.
func RegisterCodec(c Codec) {
	codecs[c.Name()] = c
}

// LookupCodec returns the codec registered for the given format name.
func LookupCodec(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, yuerrors.UnknownFormatError(name, Formats())
	}
	return c, nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
