package mqtt

import (
	"errors"
	"testing"
)

// fakeRaw implements rawPublisher for buffered-publisher tests.
type fakeRaw struct {
	connected bool
	published []bufferedMsg
	err       error
	closed    bool
}

func (f *fakeRaw) publishRaw(msg bufferedMsg) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeRaw) IsConnected() bool { return f.connected }
func (f *fakeRaw) Close() error      { f.closed = true; return nil }

func newTestBuffered(raw *fakeRaw, capacity int) *BufferedPublisher {
	return &BufferedPublisher{raw: raw, buf: newRingBuffer(capacity)}
}

func TestBufferedPublishesWhenConnected(t *testing.T) {
	raw := &fakeRaw{connected: true}
	b := newTestBuffered(raw, 8)

	if err := b.PublishDecision(DecisionEvent{Minutes: 1, Message: "a"}); err != nil {
		t.Fatalf("PublishDecision: %v", err)
	}
	if len(raw.published) != 1 {
		t.Fatalf("published: got %d, want 1", len(raw.published))
	}
	if raw.published[0].topic != TopicDecisions {
		t.Errorf("topic: got %q, want %q", raw.published[0].topic, TopicDecisions)
	}
	if b.Buffered() != 0 {
		t.Errorf("buffered: got %d, want 0", b.Buffered())
	}
}

func TestBufferedBuffersWhileDisconnected(t *testing.T) {
	raw := &fakeRaw{connected: false}
	b := newTestBuffered(raw, 8)

	for i := 0; i < 3; i++ {
		if err := b.PublishDecision(DecisionEvent{Minutes: float64(i)}); err != nil {
			t.Fatalf("PublishDecision %d: %v", i, err)
		}
	}
	if len(raw.published) != 0 {
		t.Errorf("published while disconnected: got %d, want 0", len(raw.published))
	}
	if b.Buffered() != 3 {
		t.Errorf("buffered: got %d, want 3", b.Buffered())
	}
}

func TestBufferedReplaysBacklogInOrder(t *testing.T) {
	raw := &fakeRaw{connected: false}
	b := newTestBuffered(raw, 8)

	b.PublishDecision(DecisionEvent{Message: "first"})
	b.PublishSystem(SystemEvent{Event: "HEARTBEAT"})

	raw.connected = true
	if err := b.PublishDecision(DecisionEvent{Message: "third"}); err != nil {
		t.Fatalf("PublishDecision after reconnect: %v", err)
	}

	if len(raw.published) != 3 {
		t.Fatalf("published: got %d, want 3", len(raw.published))
	}
	// Backlog first, then the new message.
	if raw.published[0].topic != TopicDecisions {
		t.Errorf("replay[0] topic: got %q", raw.published[0].topic)
	}
	if raw.published[1].topic != TopicSystem {
		t.Errorf("replay[1] topic: got %q", raw.published[1].topic)
	}
	if raw.published[2].topic != TopicDecisions {
		t.Errorf("replay[2] topic: got %q", raw.published[2].topic)
	}
	if b.Buffered() != 0 {
		t.Errorf("buffered after replay: got %d, want 0", b.Buffered())
	}
}

func TestBufferedRebuffersOnPublishError(t *testing.T) {
	raw := &fakeRaw{connected: true, err: errors.New("broker hiccup")}
	b := newTestBuffered(raw, 8)

	if err := b.PublishDecision(DecisionEvent{Message: "a"}); err == nil {
		t.Fatal("expected publish error")
	}
	if b.Buffered() != 1 {
		t.Errorf("buffered after failure: got %d, want 1", b.Buffered())
	}

	// After the broker recovers, the failed message replays.
	raw.err = nil
	if err := b.PublishDecision(DecisionEvent{Message: "b"}); err != nil {
		t.Fatalf("PublishDecision after recovery: %v", err)
	}
	if len(raw.published) != 2 {
		t.Errorf("published: got %d, want 2", len(raw.published))
	}
	if b.Buffered() != 0 {
		t.Errorf("buffered after recovery: got %d, want 0", b.Buffered())
	}
}

func TestBufferedSystemQoSAndRetain(t *testing.T) {
	raw := &fakeRaw{connected: true}
	b := newTestBuffered(raw, 8)

	if err := b.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	m := raw.published[0]
	if m.qos != 1 {
		t.Errorf("qos: got %d, want 1", m.qos)
	}
	if !m.retained {
		t.Error("expected retained message")
	}
}

func TestBufferedClose(t *testing.T) {
	raw := &fakeRaw{}
	b := newTestBuffered(raw, 8)

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !raw.closed {
		t.Error("expected underlying publisher closed")
	}
}
