// services/broadcast_hub.go - Live fan-out of reward broadcasts
package services

import (
	"encoding/json"
	"sync"

	"mathking/models"
	"mathking/natsclient"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// BroadcastSubject is the NATS subject reward events are relayed on.
const BroadcastSubject = "mathking.broadcasts"

const subscriberBuffer = 16

type relayEnvelope struct {
	Origin    string           `json:"origin"`
	Broadcast models.Broadcast `json:"broadcast"`
}

// BroadcastHub pushes new broadcast entries to every connected ticker client.
// With a NATS relay attached, entries published by other instances are
// delivered here as well.
type BroadcastHub struct {
	mu          sync.RWMutex
	subscribers map[chan models.Broadcast]struct{}

	instanceID string
	relay      *natsclient.NatsClient
	sub        *nats.Subscription
}

func NewBroadcastHub() *BroadcastHub {
	return &BroadcastHub{
		subscribers: make(map[chan models.Broadcast]struct{}),
		instanceID:  uuid.NewString(),
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (h *BroadcastHub) Subscribe() (<-chan models.Broadcast, func()) {
	ch := make(chan models.Broadcast, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of connected listeners.
func (h *BroadcastHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers b locally and, when a relay is attached, to other instances.
func (h *BroadcastHub) Publish(b models.Broadcast) {
	h.deliver(b)

	if h.relay == nil {
		return
	}
	data, err := json.Marshal(relayEnvelope{Origin: h.instanceID, Broadcast: b})
	if err != nil {
		zap.L().Error("encode broadcast for relay", zap.Error(err))
		return
	}
	if err := h.relay.Publish(BroadcastSubject, data); err != nil {
		zap.L().Warn("relay broadcast", zap.Error(err))
	}
}

// deliver never blocks: a listener whose buffer is full misses the entry.
func (h *BroadcastHub) deliver(b models.Broadcast) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- b:
		default:
			zap.L().Debug("dropping broadcast for slow subscriber")
		}
	}
}

// AttachRelay subscribes to broadcasts published by other instances.
func (h *BroadcastHub) AttachRelay(nc *natsclient.NatsClient) error {
	sub, err := nc.Subscribe(BroadcastSubject, func(msg *nats.Msg) {
		var env relayEnvelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			zap.L().Warn("malformed relayed broadcast", zap.Error(err))
			return
		}
		if env.Origin == h.instanceID {
			return
		}
		h.deliver(env.Broadcast)
	})
	if err != nil {
		return err
	}
	h.relay = nc
	h.sub = sub
	return nil
}

// Close detaches the relay and disconnects every listener.
func (h *BroadcastHub) Close() {
	if h.sub != nil {
		_ = h.sub.Unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}
