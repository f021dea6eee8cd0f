package notify

import "context"

// Multi fans content out to several channels. Every channel is
// attempted; the first error is returned.
type Multi struct {
	channels []Channel
}

// NewMulti constructs a Multi channel.
func NewMulti(channels ...Channel) *Multi {
	return &Multi{channels: channels}
}

// Send forwards content to all channels.
func (m *Multi) Send(ctx context.Context, content string) error {
	if m == nil {
		return nil
	}
	var first error
	for _, channel := range m.channels {
		if channel == nil {
			continue
		}
		if err := channel.Send(ctx, content); err != nil && first == nil {
			first = err
		}
	}
	return first
}
