package scoopid

import "errors"

var (
	ErrInvalidId     = errors.New("invalid scoop id")
	ErrInvalidNodeId = errors.New("node id out of range")
)
