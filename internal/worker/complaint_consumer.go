package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/platform/queue"
	"github.com/phani-001/FixMyTown/internal/service"
)

// ComplaintConsumer consomme les événements de cycle de vie et déclenche
// l'évaluation d'escalade sur les créations
type ComplaintConsumer struct {
	consumer   queue.Consumer
	escalation service.EscalationService
}

func NewComplaintConsumer(consumer queue.Consumer, escalation service.EscalationService) *ComplaintConsumer {
	return &ComplaintConsumer{
		consumer:   consumer,
		escalation: escalation,
	}
}

func (w *ComplaintConsumer) Start(ctx context.Context) error {
	log.Println("[WORKER] starting complaint events consumer...")
	return w.consumer.Consume(ctx, queue.QueueComplaintEvents, w.handle)
}

func (w *ComplaintConsumer) handle(ctx context.Context, body []byte) error {
	var event entity.ComplaintEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	log.Printf("[WORKER] received %s for complaint %s", event.Type, event.ComplaintID)

	switch event.Type {
	case entity.EventComplaintCreated:
		if err := w.escalation.EvaluateComplaint(ctx, event.ComplaintID); err != nil {
			return fmt.Errorf("escalation evaluation failed: %w", err)
		}
	case entity.EventStatusChanged, entity.EventAssigned:
		// Consommés sans traitement pour l'instant ; gardés dans la file pour
		// de futurs abonnés (notifications)
	default:
		log.Printf("[WORKER] unknown event type %q, dropping", event.Type)
	}

	return nil
}
