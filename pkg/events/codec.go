package events

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ChannelEvents   = "events"
	ChannelFirewall = "firewall"
)

var ErrEmptyPayload = errors.New("empty event payload")

// Encode prefixes the msgpack encoding of v with the op code.
func Encode(op uint8, v interface{}) ([]byte, error) {
	marshaled, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{op}, marshaled...), nil
}

func Decode(payload []byte) (uint8, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, ErrEmptyPayload
	}
	return payload[0], payload[1:], nil
}
