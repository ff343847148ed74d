package relay

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/types"
)

// TabPayload is the feed shape of a host tab event.
type TabPayload struct {
	Tab        dedup.TabRef `json:"tab"`
	URLChanged bool         `json:"urlChanged,omitempty"`
	Status     string       `json:"status,omitempty"`
}

// Relay forwards host tab events to a downstream consumer and publishes
// each one to the broker.
type Relay struct {
	broker *Broker
	out    chan types.TabEvent
}

// NewRelay creates a relay with the given downstream buffer.
func NewRelay(broker *Broker, buffer int) *Relay {
	if buffer <= 0 {
		buffer = subscriberBufSize
	}
	return &Relay{broker: broker, out: make(chan types.TabEvent, buffer)}
}

// Events returns the downstream stream. It is closed when Run returns.
func (r *Relay) Events() <-chan types.TabEvent {
	return r.out
}

// Run copies events from in until ctx is done or in is closed.
func (r *Relay) Run(ctx context.Context, in <-chan types.TabEvent) {
	defer close(r.out)
	slog.Info("relay started")
	defer slog.Info("relay stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			r.broker.PublishJSON(kindFor(ev.Kind), TabPayload{Tab: ev.Tab, URLChanged: ev.URLChanged, Status: ev.Status})
			select {
			case r.out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func kindFor(k types.TabEventKind) string {
	switch k {
	case types.TabCreated:
		return KindTabCreated
	case types.TabRemoved:
		return KindTabRemoved
	default:
		return KindTabUpdated
	}
}
