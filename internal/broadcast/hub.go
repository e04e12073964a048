package broadcast

import (
	"log/slog"
	"sync"

	"github.com/technosupport/ts-sentinel/internal/data"
	"github.com/technosupport/ts-sentinel/internal/metrics"
)

const (
	KindNewEvent    = "new_event"
	KindCrowdUpdate = "crowd_update"
)

// Message is the envelope pushed to live subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const defaultSubscriberBuffer = 16

// Hub fans messages out to currently connected subscribers, best effort. A
// full subscriber channel drops the message for that subscriber only; a
// stalled consumer never delays the generator or its peers. No replay: a
// subscriber connecting after publish never sees that message.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscriber]struct{}
	bufSize int
	log     *slog.Logger
}

type Subscriber struct {
	ch chan Message
}

// C is the subscriber's receive channel. Closed on Unsubscribe.
func (s *Subscriber) C() <-chan Message { return s.ch }

func NewHub(bufSize int, log *slog.Logger) *Hub {
	if bufSize <= 0 {
		bufSize = defaultSubscriberBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{subs: make(map[*Subscriber]struct{}), bufSize: bufSize, log: log}
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Message, h.bufSize)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.SubscribersActive.Set(float64(n))
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()
	metrics.SubscribersActive.Set(float64(n))
}

// Publish delivers to every connected subscriber without blocking.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- msg:
			metrics.BroadcastDelivered.WithLabelValues(msg.Type).Inc()
		default:
			metrics.BroadcastDropped.WithLabelValues("slow_subscriber").Inc()
			h.log.Debug("dropped message for slow subscriber", "type", msg.Type)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcaster is the pipeline's single publish surface: dedup in front of the
// hub, with an optional NATS mirror for off-process consumers.
type Broadcaster struct {
	Hub   *Hub
	Dedup *Dedup
	NATS  *NATSPublisher
	Log   *slog.Logger
}

func NewBroadcaster(hub *Hub, dedup *Dedup, nats *NATSPublisher, log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{Hub: hub, Dedup: dedup, NATS: nats, Log: log}
}

// Event publishes a new_event message. Duplicate ids within the dedup window
// are suppressed so a retried manual injection is announced once.
func (b *Broadcaster) Event(e *data.Event) {
	if b.Dedup != nil && e.ID != "" && b.Dedup.Seen(e.ID) {
		metrics.BroadcastDropped.WithLabelValues("duplicate").Inc()
		return
	}
	b.publish(Message{Type: KindNewEvent, Data: e})
}

// Crowd publishes a crowd_update message.
func (b *Broadcaster) Crowd(s data.CrowdSample) {
	b.publish(Message{Type: KindCrowdUpdate, Data: s})
}

func (b *Broadcaster) publish(msg Message) {
	b.Hub.Publish(msg)
	if b.NATS != nil {
		if err := b.NATS.Publish(msg); err != nil {
			metrics.BroadcastDropped.WithLabelValues("nats").Inc()
			b.Log.Warn("nats publish failed", "type", msg.Type, "error", err)
		}
	}
}
