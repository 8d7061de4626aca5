package fs

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec serializes metadata records for storage. All writers and readers of
// a shared store must use the same codec; the choice is fixed per deployment.
type Codec interface {
	// Name identifies the codec in configuration ("json", "cbor").
	Name() string

	Marshal(m *Metadata) ([]byte, error)
	Unmarshal(data []byte, m *Metadata) error
}

// JSONCodec is the default wire encoding: a flat JSON object with integer
// fields, interoperable with records written by other implementations.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(m *Metadata) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, m *Metadata) error {
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	return nil
}

// CBORCodec is a compact binary alternative for deployments that own their
// store exclusively. Not wire-compatible with JSONCodec records.
type CBORCodec struct{}

func (CBORCodec) Name() string { return "cbor" }

func (CBORCodec) Marshal(m *Metadata) ([]byte, error) {
	data, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}

func (CBORCodec) Unmarshal(data []byte, m *Metadata) error {
	if err := cbor.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	return nil
}

// CodecByName resolves a configured codec name. Empty selects the default
// JSON codec.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown metadata codec %q: %w", name, ErrInvalidArgument)
	}
}
