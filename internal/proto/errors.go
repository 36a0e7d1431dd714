// internal/proto/errors.go
package proto

import "errors"

var (
	ErrShortPayload  = errors.New("proto: payload too short")
	ErrChecksum      = errors.New("proto: checksum mismatch")
	ErrUnknownFrame  = errors.New("proto: unknown frame shape")
	ErrShortFrame    = errors.New("proto: frame too short")
	ErrPayloadTooBig = errors.New("proto: payload too large")
)
