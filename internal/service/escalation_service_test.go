package service

import (
	"context"
	"strings"
	"testing"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
)

func seedRoadsComplaints(t *testing.T, s ComplaintService, n int) []*entity.Complaint {
	t.Helper()
	out := make([]*entity.Complaint, 0, n)
	for i := 0; i < n; i++ {
		c, err := s.Create(context.Background(), CreateComplaintInput{
			Title:    "Nid de poule",
			Category: entity.CategoryRoads,
		}, citizenActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		out = append(out, c)
	}
	return out
}

func TestEscalation(t *testing.T) {
	ctx := context.Background()

	t.Run("5 signalements de même catégorie en 24h => escalade", func(t *testing.T) {
		repo := newMockComplaintRepo()
		complaints := NewComplaintService(repo, nil)
		esc := NewEscalationService(repo, complaints)

		created := seedRoadsComplaints(t, complaints, 5)
		target := created[4]

		if err := esc.EvaluateComplaint(ctx, target.ID); err != nil {
			t.Fatalf("EvaluateComplaint failed: %v", err)
		}

		after, err := complaints.Get(ctx, target.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if after.Status != entity.StatusEscalated {
			t.Errorf("Expected status escalated, got %s", after.Status)
		}
		last := after.Timeline[len(after.Timeline)-1]
		if last.Status != entity.StatusEscalated {
			t.Errorf("Expected escalation journalized, got %+v", last)
		}
		if !strings.Contains(last.Note, "Automatically escalated") {
			t.Errorf("Unexpected escalation note: %q", last.Note)
		}
		if last.UserID != SystemActor.ID {
			t.Errorf("Expected system actor, got %s", last.UserID)
		}
	})

	t.Run("sous le seuil : rien ne bouge", func(t *testing.T) {
		repo := newMockComplaintRepo()
		complaints := NewComplaintService(repo, nil)
		esc := NewEscalationService(repo, complaints)

		created := seedRoadsComplaints(t, complaints, 4)
		target := created[3]

		if err := esc.EvaluateComplaint(ctx, target.ID); err != nil {
			t.Fatalf("EvaluateComplaint failed: %v", err)
		}
		after, _ := complaints.Get(ctx, target.ID)
		if after.Status != entity.StatusPending {
			t.Errorf("Expected status pending, got %s", after.Status)
		}
	})

	t.Run("seuls les signalements pending sont escaladés", func(t *testing.T) {
		repo := newMockComplaintRepo()
		complaints := NewComplaintService(repo, nil)
		esc := NewEscalationService(repo, complaints)

		created := seedRoadsComplaints(t, complaints, 5)
		target := created[0]
		inProgress := entity.StatusInProgress
		if _, err := complaints.Update(ctx, target.ID, UpdatePatch{Status: &inProgress}, staffActor); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		if err := esc.EvaluateComplaint(ctx, target.ID); err != nil {
			t.Fatalf("EvaluateComplaint failed: %v", err)
		}
		after, _ := complaints.Get(ctx, target.ID)
		if after.Status != entity.StatusInProgress {
			t.Errorf("Expected in_progress untouched, got %s", after.Status)
		}
	})

	t.Run("signalement disparu : pas d'erreur", func(t *testing.T) {
		repo := newMockComplaintRepo()
		complaints := NewComplaintService(repo, nil)
		esc := NewEscalationService(repo, complaints)

		if err := esc.EvaluateComplaint(ctx, "ghost"); err != nil {
			t.Errorf("Expected nil error for missing complaint, got %v", err)
		}
	})
}
