package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

// escalationThreshold : nombre de signalements d'une même catégorie sur la
// fenêtre glissante à partir duquel un signalement encore pending est escaladé
const (
	escalationThreshold = 5
	escalationWindow    = 24 * time.Hour
)

// EscalationService détecte les pics de signalements par catégorie et fait
// monter la priorité de traitement via le cycle de vie normal (l'escalade
// laisse donc une trace dans le journal comme toute autre transition)
type EscalationService interface {
	EvaluateComplaint(ctx context.Context, complaintID string) error
}

type escalationService struct {
	repo       repository.ComplaintRepository
	complaints ComplaintService
}

func NewEscalationService(repo repository.ComplaintRepository, complaints ComplaintService) EscalationService {
	return &escalationService{
		repo:       repo,
		complaints: complaints,
	}
}

func (s *escalationService) EvaluateComplaint(ctx context.Context, complaintID string) error {
	complaint, err := s.repo.GetByID(ctx, complaintID)
	if err != nil {
		return fmt.Errorf("failed to load complaint: %w", err)
	}
	if complaint == nil {
		// Supprimé entre la publication et la consommation : rien à faire
		log.Printf("[ESCALATION] complaint %s no longer exists, skipping", complaintID)
		return nil
	}
	if complaint.Status != entity.StatusPending {
		return nil
	}

	since := complaint.SubmittedAt.Add(-escalationWindow)
	count, err := s.repo.CountByCategorySince(ctx, complaint.Category, since)
	if err != nil {
		return fmt.Errorf("failed to count complaints: %w", err)
	}
	if count < escalationThreshold {
		return nil
	}

	log.Printf("[ESCALATION] %d %s complaints in the last 24h, escalating %s",
		count, complaint.Category, complaint.ID)

	status := entity.StatusEscalated
	note := fmt.Sprintf("Automatically escalated: %d %s complaints within 24 hours", count, complaint.Category)
	_, err = s.complaints.Update(ctx, complaint.ID, UpdatePatch{
		Status: &status,
		Note:   note,
	}, SystemActor)
	if err != nil {
		return fmt.Errorf("failed to escalate complaint: %w", err)
	}
	return nil
}
