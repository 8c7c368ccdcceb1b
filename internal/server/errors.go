package server

import "errors"

// Realtime events have no response channel for failures: an event that
// fails any of these checks is dropped and the connection stays open. The
// handlers still return typed errors so a future protocol revision can NACK
// them instead of relying on the read loop's log line.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrChatNotFound = errors.New("chat not found")
	ErrNotMember    = errors.New("not a chat member")
	ErrEmptyContent = errors.New("empty message content")
)
