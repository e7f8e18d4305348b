package interfaces

import (
	"github.com/ternarybob/stackscout/internal/models"
)

// ProgressPublisher receives pipeline progress events. Publish must not block.
type ProgressPublisher interface {
	Publish(event models.ProgressEvent)
}

// NoopPublisher discards events
type NoopPublisher struct{}

func (NoopPublisher) Publish(models.ProgressEvent) {}
