package shared

import "time"

// TokenUsage is what one AI call consumed.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Empty reports whether the call reported no tokens at all.
func (u TokenUsage) Empty() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Total is TotalTokens when the provider reported it, else prompt plus
// completion.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// CallMeta describes one AI helper call for usage accounting.
type CallMeta struct {
	Helper  string
	Usage   TokenUsage
	Latency time.Duration
}
