package queue

import "context"

// ChannelPublisher is an in-process shipping queue modeled as a buffered
// channel. It stands in for the broker in tests and single-binary runs;
// workers drain Queue and process each shipping ID.
type ChannelPublisher struct {
	queue chan string
}

func NewChannelPublisher(size int) *ChannelPublisher {
	return &ChannelPublisher{queue: make(chan string, size)}
}

func (p *ChannelPublisher) Publish(ctx context.Context, shippingID string) error {
	select {
	case p.queue <- shippingID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ChannelPublisher) Queue() <-chan string {
	return p.queue
}

// Close stops the queue. Publish after Close panics; callers shut down
// producers first.
func (p *ChannelPublisher) Close() {
	close(p.queue)
}
