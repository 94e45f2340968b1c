package tiktoken

import (
	"strings"

	"github.com/tiktoken-go/tokenizer/codec"

	ports "model-serving-adapters/internal/core/ports/output"
)

type bpe interface {
	Encode(string) ([]uint, []string, error)
	Decode([]uint) (string, error)
}

type counter struct {
	codec bpe
}

// NewCounter creates a TokenCounter over the cl100k_base encoding
func NewCounter() ports.TokenCounter {
	return &counter{codec: codec.NewCl100kBase()}
}

func (c *counter) Count(text string) int {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return approxTokens(text)
	}
	return len(ids)
}

func (c *counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return truncateApprox(text, maxTokens)
	}
	if len(ids) <= maxTokens {
		return text
	}
	out, err := c.codec.Decode(ids[:maxTokens])
	if err != nil {
		return truncateApprox(text, maxTokens)
	}
	// a cut inside a multi-byte rune decodes to an invalid tail
	return strings.ToValidUTF8(out, "")
}

// approximation
func approxTokens(text string) int {
	wc := len(strings.Fields(text)) * 4 / 3
	cc := len(text) / 4
	return (wc + cc) / 2
}

func truncateApprox(text string, maxTokens int) string {
	words := strings.Fields(text)
	keep := maxTokens * 3 / 4
	if keep < 1 {
		keep = 1
	}
	if len(words) <= keep {
		return text
	}
	return strings.Join(words[:keep], " ")
}
