package domain

import (
	"fmt"
	"strings"
)

// AuthorUser marks a message written by the person chatting. Every other
// author (clients send "bot") is treated as the assistant.
const AuthorUser = "user"

// Message is one entry of a client-owned conversation.
type Message struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Author == AuthorUser
}

// Conversation is the chronological message list resent with every request.
type Conversation []Message

// Validate checks that the conversation can be sent to the model.
func (c Conversation) Validate() error {
	if len(c) == 0 {
		return ErrBadRequest("history must contain at least one message").WithParam("history")
	}
	for i, msg := range c {
		if strings.TrimSpace(msg.Author) == "" {
			return ErrBadRequest(fmt.Sprintf("history[%d] is missing an author", i)).
				WithParam(fmt.Sprintf("history[%d].author", i))
		}
	}
	return nil
}

// Last returns the active turn.
func (c Conversation) Last() Message {
	return c[len(c)-1]
}

// ParamType is a JSON-Schema primitive type.
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeNumber  ParamType = "number"
	ParamTypeInteger ParamType = "integer"
	ParamTypeBoolean ParamType = "boolean"
)

// Parameter describes one named tool argument.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// ToolDeclaration describes a tool to the model.
type ToolDeclaration struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Parameter returns the named parameter, if declared.
func (d ToolDeclaration) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Required lists the names of required parameters in declaration order.
func (d ToolDeclaration) Required() []string {
	var required []string
	for _, p := range d.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// ToolCall is a directive emitted by the model service.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the JSON-serializable mapping returned by an executor.
type ToolResult map[string]any

// SoftError builds an in-band failure result the model can relay.
func SoftError(message string) ToolResult {
	return ToolResult{"error": message}
}
