package ports

import (
	"context"

	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type EventEnvelope = contractsv1.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// GapReporter is implemented by feeds that can lose notifications. The topic
// names the affected collection feed; an empty topic means every collection.
type GapReporter interface {
	OnGap(fn func(topic string))
}
