// Package protocol defines the clipwatch wire protocol.
//
// Both directions are newline-delimited JSON, one object per line, tagged by
// a "type" field. stdout carries Messages to the host, stdin carries Commands
// from it. Every line on the outbound stream is a well-formed Message; all
// diagnostics go to stderr instead.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the kind of outbound message.
type MessageType string

const (
	TypeReady           MessageType = "ready"
	TypeClipboardUpdate MessageType = "clipboard_update"
	TypeTriggerXML      MessageType = "trigger_xml"
	TypeError           MessageType = "error"
)

// CommandType identifies the kind of inbound command.
type CommandType string

const (
	CommandPause  CommandType = "pause"
	CommandResume CommandType = "resume"
)

// Message is the outbound wire envelope. Construct one with the typed
// constructors below rather than filling the struct directly, so the tag and
// its payload fields cannot drift apart.
type Message struct {
	// Always present
	Type MessageType `json:"type"`

	// CLIPBOARD_UPDATE
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // RFC 3339, UTC
	Length    int    `json:"length,omitempty"`    // byte length of Content

	// TRIGGER_XML — matched spans in order of appearance, tags included
	XMLPayloads []string `json:"xml_payloads,omitempty"`

	// ERROR
	Error string `json:"message,omitempty"`
}

// Ready signals that clipboard access succeeded and polling is about to start.
// It is the first message of the process's lifetime.
func Ready() *Message {
	return &Message{Type: TypeReady}
}

// ClipboardUpdate reports new clipboard content observed at the given time.
func ClipboardUpdate(content string, at time.Time) *Message {
	return &Message{
		Type:      TypeClipboardUpdate,
		Content:   content,
		Timestamp: at.UTC().Format(time.RFC3339),
		Length:    len(content),
	}
}

// TriggerXML reports embedded command markup found in clipboard content.
// The host interprets the payloads; clipwatch only locates them.
func TriggerXML(payloads []string) *Message {
	return &Message{Type: TypeTriggerXML, XMLPayloads: payloads}
}

// Errorf builds a fatal-condition message. Transient failures never reach the
// outbound stream.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Command is the inbound wire envelope.
type Command struct {
	Type CommandType `json:"type"`
}

// DecodeCommand deserialises one inbound line. Unknown or missing tags are an
// error; the caller drops the line without touching monitoring state.
func DecodeCommand(b []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(b, &c); err != nil {
		return Command{}, fmt.Errorf("command decode: %w", err)
	}
	switch c.Type {
	case CommandPause, CommandResume:
		return c, nil
	default:
		return Command{}, fmt.Errorf("unknown command type %q", c.Type)
	}
}
