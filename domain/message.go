// Package domain contains core concepts of the chat room.
// This file defines the wire message union and its constructors.
// Messages are immutable once constructed.
package domain

import "time"

// ServerName is the author of every system notice.
const ServerName = "Server"

type MessageType string

const (
	TypeChat          MessageType = "chat"
	TypeSystem        MessageType = "system"
	TypeRosterRequest MessageType = "roster_request"
	TypeRosterReply   MessageType = "roster_reply"
	TypeExit          MessageType = "exit"
)

// Message is the discriminated payload carried by one frame.
// From/To/Body/Entries are meaningful depending on Type and empty otherwise.
type Message struct {
	Type    MessageType `json:"type"`
	From    string      `json:"from,omitempty"`
	To      string      `json:"to,omitempty"`
	Body    string      `json:"body,omitempty"`
	Entries []string    `json:"entries,omitempty"`
	At      string      `json:"at,omitempty"`
}

// NewChat builds a chat message. An empty recipient means room-wide delivery.
func NewChat(from, to, body string) Message {
	return Message{
		Type: TypeChat,
		From: from,
		To:   to,
		Body: body,
		At:   stamp(),
	}
}

// NewSystem builds a server notice (joins, leaves, shutdown, tips).
func NewSystem(body string) Message {
	return Message{
		Type: TypeSystem,
		From: ServerName,
		Body: body,
		At:   stamp(),
	}
}

func NewRosterRequest() Message {
	return Message{Type: TypeRosterRequest}
}

// NewRosterReply builds the answer to a roster request.
// Entries are expected to be sorted already for deterministic display.
func NewRosterReply(entries []string) Message {
	return Message{
		Type:    TypeRosterReply,
		From:    ServerName,
		Entries: entries,
		At:      stamp(),
	}
}

func NewExit() Message {
	return Message{Type: TypeExit}
}

func stamp() string {
	return time.Now().UTC().Format(time.TimeOnly)
}
