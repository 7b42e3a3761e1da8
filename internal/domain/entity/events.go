package entity

import "time"

// ComplaintEventType identifie les événements publiés sur la file
// complaint_events et consommés par le worker d'escalade.
type ComplaintEventType string

const (
	EventComplaintCreated ComplaintEventType = "complaint.created"
	EventStatusChanged    ComplaintEventType = "complaint.status_changed"
	EventAssigned         ComplaintEventType = "complaint.assigned"
)

// ComplaintEvent est l'enveloppe publiée en JSON sur RabbitMQ.
type ComplaintEvent struct {
	Type        ComplaintEventType `json:"type"`
	ComplaintID string             `json:"complaint_id"`
	Category    ComplaintCategory  `json:"category"`
	Status      ComplaintStatus    `json:"status"`
	OccurredAt  time.Time          `json:"occurred_at"`
}
