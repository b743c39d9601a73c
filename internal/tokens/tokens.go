// Package tokens estimates token counts for synthesized responses using
// tiktoken encodings, so usage blocks track the actual request and response
// text instead of hard-coded constants.
package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens with a tiktoken codec chosen by model prefix.
// Counts are deterministic for fixed input, which keeps synthesized usage
// blocks stable across runs.
type Counter struct {
	mu    sync.Mutex
	cache map[tokenizer.Encoding]tokenizer.Codec
}

// NewCounter creates a Counter with an empty codec cache.
func NewCounter() *Counter {
	return &Counter{cache: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

var (
	defaultOnce    sync.Once
	defaultCounter *Counter
)

// Default returns the process-wide shared Counter.
func Default() *Counter {
	defaultOnce.Do(func() {
		defaultCounter = NewCounter()
	})
	return defaultCounter
}

// Count returns the token count of text under the encoding matching model.
// Non-OpenAI models (Gemini, OpenRouter-routed) are estimated with
// o200k_base; on any tokenizer failure a bytes/4 heuristic is used so the
// count never blocks response synthesis.
func (c *Counter) Count(model, text string) int {
	if text == "" {
		return 0
	}
	codec, err := c.codecFor(model)
	if err != nil {
		return fallbackCount(text)
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return fallbackCount(text)
	}
	return len(ids)
}

func (c *Counter) codecFor(model string) (tokenizer.Codec, error) {
	encoding := modelEncoding(model)

	c.mu.Lock()
	defer c.mu.Unlock()
	if codec, ok := c.cache[encoding]; ok {
		return codec, nil
	}
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}
	c.cache[encoding] = codec
	return codec, nil
}

// modelEncoding maps a model name to a tiktoken encoding.
//   - O200kBase: gpt-4.1, gpt-4o, gpt-5, o-series, and everything unknown
//   - Cl100kBase: gpt-4, gpt-3.5
func modelEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "gpt-5"), strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}

func fallbackCount(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}
