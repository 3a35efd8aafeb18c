package broadcast

import (
	"context"

	"floorly/pkg/logger"
)

// LogPublisher writes events to the application log instead of a broker.
// Used when Kafka is not configured, so single-node deployments still get a
// readable audit trail of floor changes.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	fields := map[string]interface{}{
		"type":       string(event.Type),
		"org_id":     event.OrgID.String(),
		"new_status": event.NewStatus,
	}
	if event.ReservationID != nil {
		fields["reservation_id"] = event.ReservationID.String()
	}
	if event.TableID != nil {
		fields["table_id"] = event.TableID.String()
	}
	if event.WaitlistID != nil {
		fields["waitlist_id"] = event.WaitlistID.String()
	}

	p.log.InfoWithContext(ctx, "Floor Event", fields)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
