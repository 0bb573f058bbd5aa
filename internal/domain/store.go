package domain

// History is the append-only conversation owned by a single loop.
type History interface {
	Append(msgs ...Message)
	Messages() []Message
	Window(messageLimit, tokenLimit int) []Message
	Len() int
}

type Snapshotter interface {
	Save(msgs []Message) error
	Load() ([]Message, error)
}
