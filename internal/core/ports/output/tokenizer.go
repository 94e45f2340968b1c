package ports

// TokenCounter measures and bounds text in model tokens
type TokenCounter interface {
	Count(text string) int
	// Truncate cuts text to at most maxTokens tokens.
	Truncate(text string, maxTokens int) string
}
