package nodes

import (
	"github.com/cloudwego/eino/schema"
)

// normalizeMaxHistory returns a sane default when the provided value is invalid.
func normalizeMaxHistory(n int) int {
	if n <= 0 {
		return DefaultMaxHistory
	}
	return n
}

// trimTail keeps the last maxTurns messages in a fresh slice.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) > maxTurns {
		messages = messages[len(messages)-maxTurns:]
	}
	result := make([]*schema.Message, len(messages))
	copy(result, messages)
	return result
}
