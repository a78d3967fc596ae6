// Package history converts client conversations into Gemini turns.
package history

import (
	"google.golang.org/genai"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// Gemini role names. Gemini calls the assistant role "model".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// RoleFor maps a message author to a Gemini role.
func RoleFor(msg domain.Message) string {
	if msg.IsUser() {
		return RoleUser
	}
	return RoleModel
}

// ToContents maps every message to a single-text-part turn, preserving order.
func ToContents(conv domain.Conversation) ([]*genai.Content, error) {
	if len(conv) == 0 {
		return nil, domain.ErrBadRequest("history must contain at least one message").WithParam("history")
	}

	contents := make([]*genai.Content, 0, len(conv))
	for _, msg := range conv {
		contents = append(contents, &genai.Content{
			Role:  RoleFor(msg),
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents, nil
}

// Split returns the turns preceding the active one and the active turn itself.
// The active turn is the last message sent as a user turn, whoever wrote it,
// because the model is always asked to continue from the caller's side.
func Split(conv domain.Conversation) (prior []*genai.Content, active *genai.Content, err error) {
	contents, err := ToContents(conv)
	if err != nil {
		return nil, nil, err
	}

	last := contents[len(contents)-1]
	active = &genai.Content{Role: RoleUser, Parts: last.Parts}
	return contents[:len(contents)-1], active, nil
}
