// Package bomio implements the textual and binary wire encodings for
// the BOM engine's query inputs and results (spec §6): JSON for
// textual interchange, MessagePack for the compact binary form shared
// with the tiered cache. Field names are stable across both.
package bomio

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ricemug/nexusbom/pkg/bom"
)

// EncodeJSON renders v as its textual wire format. Decimals encode as
// base-10 strings and timestamps as RFC-3339 UTC via the underlying
// types' own json.Marshaler implementations (shopspring/decimal and
// time.Time both already satisfy this contract; no custom formatting
// is layered on top).
func EncodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, bom.ErrSerialization(err)
	}
	return data, nil
}

// DecodeJSON parses the textual wire format into v.
func DecodeJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return bom.ErrSerialization(err)
	}
	return nil
}

// EncodeBinary renders v as its compact MessagePack wire format, the
// same encoding used for L2 cache values.
func EncodeBinary(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, bom.ErrSerialization(err)
	}
	return data, nil
}

// DecodeBinary parses the binary wire format into v.
func DecodeBinary(data []byte, v interface{}) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return bom.ErrSerialization(err)
	}
	return nil
}
