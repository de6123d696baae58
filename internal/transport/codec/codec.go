// Package codec encodes the device messages carried over MQTT.
//
// Payloads are CBOR with the field names of the json tags. Decoding also
// accepts JSON objects so hand-written test payloads and older gateways
// keep working.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility: unknown fields are ignored and a
	// duplicate key keeps the last value.
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// ContentType is the MQTT v5 content type of encoded payloads.
const ContentType = "application/cbor"

// Marshal encodes v as CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes a CBOR or JSON payload into v.
func Unmarshal(data []byte, v any) error {
	if isJSON(data) {
		return json.Unmarshal(data, v)
	}
	return decMode.Unmarshal(data, v)
}

// Decode decodes a payload into a new T.
func Decode[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	var v T
	if err := Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return &v, nil
}

// isJSON reports whether data looks like a JSON object. A CBOR message is
// always a map, whose initial byte is never '{'.
func isJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
