// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package status implements the single-slot notification surface shared by the
// views of one screen. The most recent message wins and no history is kept.
// Severity is always set explicitly by the publisher; it is never derived from
// the message text.
package status

import "sync"

// Severity classifies a status message.
type Severity int

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the current content of a Channel.
type Message struct {
	Severity Severity
	Text     string
}

// Sink receives every published message, e.g. to render it on the terminal.
type Sink func(Message)

// Channel holds at most one message. It is safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	current Message
	set     bool
	sink    Sink
}

// NewChannel creates an empty channel. sink may be nil.
func NewChannel(sink Sink) *Channel {
	return &Channel{sink: sink}
}

// Publish replaces the current message.
func (c *Channel) Publish(sev Severity, text string) {
	msg := Message{Severity: sev, Text: text}
	c.mu.Lock()
	c.current = msg
	c.set = true
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		sink(msg)
	}
}

// Info, Success and Error are shorthands for Publish.
func (c *Channel) Info(text string)    { c.Publish(Info, text) }
func (c *Channel) Success(text string) { c.Publish(Success, text) }
func (c *Channel) Error(text string)   { c.Publish(Error, text) }

// Clear drops the current message. Views call it when a new operation begins
// so stale messages do not linger.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Message{}
	c.set = false
}

// Current returns the current message and whether one is set.
func (c *Channel) Current() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.set
}
