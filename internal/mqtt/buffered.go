package mqtt

import (
	"fmt"
	"sync"
)

// rawPublisher is the surface BufferedPublisher needs from the underlying
// client: raw serialized publishes plus connection state.
type rawPublisher interface {
	publishRaw(msg bufferedMsg) error
	IsConnected() bool
	Close() error
}

// BufferedPublisher wraps a publisher and buffers serialized messages while
// the broker connection is down, replaying them in order once it returns.
// Decision events are cheap to lose individually but a gap in the decision
// log makes a run hard to reconstruct, so the buffer holds the backlog.
type BufferedPublisher struct {
	mu  sync.Mutex
	raw rawPublisher
	buf *ringBuffer
}

// NewBufferedPublisher wraps the given publisher with a replay buffer of the
// given capacity.
func NewBufferedPublisher(raw *RealPublisher, capacity int) *BufferedPublisher {
	return &BufferedPublisher{
		raw: raw,
		buf: newRingBuffer(capacity),
	}
}

// PublishDecision sends or buffers a decision event.
func (b *BufferedPublisher) PublishDecision(event DecisionEvent) error {
	payload, err := FormatDecisionPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return b.send(bufferedMsg{topic: TopicDecisions, payload: payload})
}

// PublishSystem sends or buffers a system event.
func (b *BufferedPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return b.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (b *BufferedPublisher) send(msg bufferedMsg) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.raw.IsConnected() {
		b.buf.push(msg)
		return nil
	}

	// Replay backlog first so ordering is preserved.
	backlog := b.buf.drainAll()
	for i, m := range backlog {
		if err := b.raw.publishRaw(m); err != nil {
			// Put the failed message and everything behind it back.
			for _, rest := range backlog[i:] {
				b.buf.push(rest)
			}
			b.buf.push(msg)
			return fmt.Errorf("replay buffered message %d: %w", i, err)
		}
	}

	if err := b.raw.publishRaw(msg); err != nil {
		b.buf.push(msg)
		return err
	}
	return nil
}

// Buffered returns the number of messages waiting for replay.
func (b *BufferedPublisher) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.len()
}

// IsConnected reports the underlying connection state.
func (b *BufferedPublisher) IsConnected() bool {
	return b.raw.IsConnected()
}

// Close closes the underlying publisher. Buffered messages are discarded.
func (b *BufferedPublisher) Close() error {
	return b.raw.Close()
}
