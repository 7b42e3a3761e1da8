package repository

import (
	"context"
	"time"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
)

// ComplaintFilter : prédicats optionnels conjonctifs (tous les champs fournis
// doivent matcher). Un champ vide est ignoré.
type ComplaintFilter struct {
	CitizenID  string
	AssignedTo string
	Status     entity.ComplaintStatus
	Category   entity.ComplaintCategory
}

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	List(ctx context.Context, filter ComplaintFilter) ([]entity.Complaint, error)
	// GetByID retourne (nil, nil) si le signalement n'existe pas
	GetByID(ctx context.Context, id string) (*entity.Complaint, error)
	// Update réécrit les champs mutables et incrémente revision.
	// expectedRevision < 0 désactive le contrôle ; sinon l'écriture n'a lieu
	// que si la revision stockée correspond. Retourne false si rien n'a été écrit.
	Update(ctx context.Context, complaint *entity.Complaint, expectedRevision int64) (bool, error)
	AppendTimeline(ctx context.Context, complaintID string, entry *entity.TimelineEntry) error
	AppendComment(ctx context.Context, complaintID string, comment *entity.Comment) error
	// Delete retourne false si l'id est inconnu
	Delete(ctx context.Context, id string) (bool, error)
	CountByCategorySince(ctx context.Context, category entity.ComplaintCategory, since time.Time) (int, error)
}
