package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the grpc content-subtype both sides of the native transport
// agree on. Messages are plain structs carried as JSON; there is no generated
// code to keep in sync with a proto toolchain.
const CodecName = "json"

// JSONCodec implements grpc encoding.Codec over encoding/json.
type JSONCodec struct{}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: failed to unmarshal message: %w", err)
	}
	return nil
}

func (JSONCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(JSONCodec{})
}
