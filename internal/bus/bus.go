// Package bus provides event bus implementations for PropClear.
package bus

import (
	"fmt"

	"github.com/propclear/propclear/internal/domain"
)

// New creates an event bus from configuration.
// Free tier: in-process channels. Pro tier: NATS.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}
