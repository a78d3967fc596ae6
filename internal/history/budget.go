package history

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// perMessageOverhead approximates role and framing tokens per turn.
const perMessageOverhead = 4

// Budget caps the size of a conversation before it is sent upstream. Gemini
// has no local tokenizer, so cl100k_base serves as an estimate.
type Budget struct {
	maxTokens int

	once     sync.Once
	codec    tokenizer.Codec
	codecErr error
}

// NewBudget creates a budget of maxTokens. Zero or negative disables the check.
func NewBudget(maxTokens int) *Budget {
	return &Budget{maxTokens: maxTokens}
}

func (b *Budget) getCodec() (tokenizer.Codec, error) {
	b.once.Do(func() {
		b.codec, b.codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return b.codec, b.codecErr
}

// Count estimates the tokens in conv.
func (b *Budget) Count(conv domain.Conversation) (int, error) {
	codec, err := b.getCodec()
	if err != nil {
		return 0, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	total := 0
	for _, msg := range conv {
		ids, _, err := codec.Encode(msg.Content)
		if err != nil {
			return 0, fmt.Errorf("encode message: %w", err)
		}
		total += len(ids) + perMessageOverhead
	}
	return total, nil
}

// Check returns a bad_request APIError when conv exceeds the budget.
func (b *Budget) Check(conv domain.Conversation) error {
	if b == nil || b.maxTokens <= 0 {
		return nil
	}

	n, err := b.Count(conv)
	if err != nil {
		return domain.ErrServer("could not measure conversation size").WithCause(err)
	}
	if n > b.maxTokens {
		return domain.ErrBadRequest(fmt.Sprintf(
			"conversation is too long (about %d tokens, limit %d)", n, b.maxTokens)).WithParam("history")
	}
	return nil
}
