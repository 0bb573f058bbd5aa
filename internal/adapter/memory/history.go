package memory

import (
	"self-improving-agent/internal/domain"
)

// History keeps the full conversation in insertion order. The first pinned
// messages are the bootstrap prompts and survive every window.
type History struct {
	messages []domain.Message
	pinned   int
}

func NewHistory(pinned int) *History {
	if pinned < 0 {
		pinned = 0
	}
	return &History{
		pinned: pinned,
	}
}

func (h *History) Append(msgs ...domain.Message) {
	h.messages = append(h.messages, msgs...)
}

func (h *History) Len() int {
	return len(h.messages)
}

func (h *History) Messages() []domain.Message {
	return append([]domain.Message(nil), h.messages...)
}

// Window returns the pinned messages followed by the newest suffix of the
// rest that fits both limits. A limit <= 0 disables it. The suffix never
// starts with a tool message whose originating call was cut off.
func (h *History) Window(messageLimit, tokenLimit int) []domain.Message {
	if messageLimit <= 0 && tokenLimit <= 0 {
		return h.Messages()
	}

	pinned := h.pinned
	if pinned > len(h.messages) {
		pinned = len(h.messages)
	}
	head := h.messages[:pinned]
	tail := h.messages[pinned:]

	tokens := 0
	for _, m := range head {
		tokens += EstimateTokens(m)
	}

	room := len(tail)
	if messageLimit > 0 {
		room = messageLimit - pinned
		if room < 0 {
			room = 0
		}
	}

	start := len(tail)
	for i := len(tail) - 1; i >= 0; i-- {
		if len(tail)-i > room {
			break
		}
		t := EstimateTokens(tail[i])
		if tokenLimit > 0 && tokens+t > tokenLimit {
			break
		}
		tokens += t
		start = i
	}

	for start < len(tail) && tail[start].Role == domain.RoleTool {
		start++
	}

	window := make([]domain.Message, 0, len(head)+len(tail)-start)
	window = append(window, head...)
	window = append(window, tail[start:]...)
	return window
}

// EstimateTokens approximates the prompt cost of a message at four bytes
// per token.
func EstimateTokens(m domain.Message) int {
	n := len(m.Content)
	for _, tc := range m.ToolCalls {
		n += len(tc.Name) + len(tc.Arguments)
	}
	return n / 4
}
