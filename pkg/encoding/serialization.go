// Package encoding holds the codecs used to persist and stream values.
package encoding

import (
	"bytes"
	"encoding/json"
)

// Codec converts values of T to and from bytes.
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

// JSON is a Codec backed by encoding/json.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(&v)
	return v, err
}
