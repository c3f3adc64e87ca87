// Package tokens estimates token counts for memory budgeting. It uses the
// cl100k_base tiktoken encoding when available and falls back to a
// characters/4 approximation when the encoding cannot be loaded.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// Estimate returns the token count of text.
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	enc, err := getTokenizer()
	if err != nil {
		// Rough approximation: ~4 characters per token for English text.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
