package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/phani-001/FixMyTown/internal/platform/queue"
)

// Actor identifie l'utilisateur à l'origine d'une mutation ; repris dans les
// entrées de journal
type Actor struct {
	ID   string
	Name string
	Role entity.UserRole
}

// SystemActor est utilisé par les traitements automatiques (worker d'escalade)
var SystemActor = Actor{ID: "system", Name: "FixMyTown", Role: entity.RoleSuperAdmin}

type CreateComplaintInput struct {
	Title              string
	Description        string
	Category           entity.ComplaintCategory
	Priority           entity.ComplaintPriority
	Location           entity.Location
	Images             []string
	AssignedDepartment string
}

// UpdatePatch : fusion superficielle, seuls les champs non-nil sont appliqués
type UpdatePatch struct {
	Title              *string
	Description        *string
	Category           *entity.ComplaintCategory
	Status             *entity.ComplaintStatus
	Priority           *entity.ComplaintPriority
	AssignedTo         *string
	AssignedDepartment *string
	Images             *[]string
	// Note accompagne l'entrée de journal quand le statut change
	Note string
	// ExpectedRevision (optionnel) : refuse l'écriture si la revision stockée
	// a bougé entre-temps
	ExpectedRevision *int64
}

type AssignInput struct {
	AssignedTo         *string
	AssignedDepartment *string
	Note               string
}

type ComplaintService interface {
	Create(ctx context.Context, input CreateComplaintInput, actor Actor) (*entity.Complaint, error)
	List(ctx context.Context, filter repository.ComplaintFilter) ([]entity.Complaint, error)
	Get(ctx context.Context, id string) (*entity.Complaint, error)
	Update(ctx context.Context, id string, patch UpdatePatch, actor Actor) (*entity.Complaint, error)
	Assign(ctx context.Context, id string, input AssignInput, actor Actor) (*entity.Complaint, error)
	AddComment(ctx context.Context, id, text string, actor Actor) (*entity.Complaint, error)
	Delete(ctx context.Context, id string) error
}

type complaintService struct {
	repo      repository.ComplaintRepository
	publisher queue.Publisher
}

func NewComplaintService(repo repository.ComplaintRepository, publisher queue.Publisher) ComplaintService {
	return &complaintService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *complaintService) Create(ctx context.Context, input CreateComplaintInput, actor Actor) (*entity.Complaint, error) {
	// Validation basique (Business Logic)
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("invalid category: %s", input.Category)
	}
	if actor.ID == "" {
		return nil, fmt.Errorf("citizen identity is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}

	userName := actor.Name
	if userName == "" {
		userName = "Citizen"
	}

	now := time.Now().UTC()
	images := input.Images
	if images == nil {
		images = []string{}
	}

	complaint := &entity.Complaint{
		ID:                 uuid.New().String(),
		Title:              input.Title,
		Description:        input.Description,
		Category:           input.Category,
		Status:             entity.StatusPending,
		Priority:           priority,
		Location:           input.Location,
		Images:             images,
		CitizenID:          actor.ID,
		AssignedDepartment: input.AssignedDepartment,
		SubmittedAt:        now,
		UpdatedAt:          now,
		Revision:           1,
		// Le journal naît avec le signalement : sa première entrée porte
		// toujours le statut initial
		Timeline: []entity.TimelineEntry{{
			Status:    entity.StatusPending,
			Timestamp: now,
			Note:      "Complaint submitted",
			UserID:    actor.ID,
			UserName:  userName,
		}},
		Comments: []entity.Comment{},
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}

	s.publish(entity.EventComplaintCreated, complaint)
	return complaint, nil
}

func (s *complaintService) List(ctx context.Context, filter repository.ComplaintFilter) ([]entity.Complaint, error) {
	return s.repo.List(ctx, filter)
}

func (s *complaintService) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	return complaint, nil
}

func (s *complaintService) Update(ctx context.Context, id string, patch UpdatePatch, actor Actor) (*entity.Complaint, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizePatch(complaint, patch, actor); err != nil {
		return nil, err
	}

	oldStatus := complaint.Status

	if patch.Title != nil {
		complaint.Title = *patch.Title
	}
	if patch.Description != nil {
		complaint.Description = *patch.Description
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, fmt.Errorf("invalid category: %s", *patch.Category)
		}
		complaint.Category = *patch.Category
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("invalid status: %s", *patch.Status)
		}
		complaint.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority: %s", *patch.Priority)
		}
		complaint.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		complaint.AssignedTo = *patch.AssignedTo
	}
	if patch.AssignedDepartment != nil {
		complaint.AssignedDepartment = *patch.AssignedDepartment
	}
	if patch.Images != nil {
		complaint.Images = *patch.Images
	}

	// updatedAt avance à chaque mutation, statut changé ou non
	now := time.Now().UTC()
	complaint.UpdatedAt = now

	expected := int64(-1)
	if patch.ExpectedRevision != nil {
		expected = *patch.ExpectedRevision
	}
	written, err := s.repo.Update(ctx, complaint, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to update complaint: %w", err)
	}
	if !written {
		if expected >= 0 {
			return nil, ErrRevisionConflict
		}
		return nil, ErrComplaintNotFound
	}
	complaint.Revision++

	// Un changement de statut, et lui seul, allonge le journal
	if complaint.Status != oldStatus {
		note := patch.Note
		if note == "" {
			note = fmt.Sprintf("Status changed to %s", complaint.Status)
		}
		entry := entity.TimelineEntry{
			Status:    complaint.Status,
			Timestamp: now,
			Note:      note,
			UserID:    actor.ID,
			UserName:  actor.Name,
		}
		if err := s.repo.AppendTimeline(ctx, complaint.ID, &entry); err != nil {
			return nil, fmt.Errorf("failed to append timeline entry: %w", err)
		}
		complaint.Timeline = append(complaint.Timeline, entry)
		s.publish(entity.EventStatusChanged, complaint)
	}

	return complaint, nil
}

func (s *complaintService) Assign(ctx context.Context, id string, input AssignInput, actor Actor) (*entity.Complaint, error) {
	if input.AssignedTo == nil && input.AssignedDepartment == nil {
		return nil, fmt.Errorf("assigned_to or assigned_department is required")
	}
	if input.AssignedDepartment != nil && !actor.Role.Can(entity.CapReassignDepartment) {
		return nil, ErrForbidden
	}

	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// L'affectation est indépendante du statut : champ omis = champ inchangé
	if input.AssignedTo != nil {
		complaint.AssignedTo = *input.AssignedTo
	}
	if input.AssignedDepartment != nil {
		complaint.AssignedDepartment = *input.AssignedDepartment
	}

	now := time.Now().UTC()
	complaint.UpdatedAt = now

	written, err := s.repo.Update(ctx, complaint, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to assign complaint: %w", err)
	}
	if !written {
		return nil, ErrComplaintNotFound
	}
	complaint.Revision++

	note := input.Note
	if note == "" {
		if input.AssignedTo != nil {
			note = "Assigned to staff member"
		} else {
			note = fmt.Sprintf("Routed to %s department", complaint.AssignedDepartment)
		}
	}
	// L'entrée de journal porte le statut courant, inchangé par l'affectation
	entry := entity.TimelineEntry{
		Status:    complaint.Status,
		Timestamp: now,
		Note:      note,
		UserID:    actor.ID,
		UserName:  actor.Name,
	}
	if err := s.repo.AppendTimeline(ctx, complaint.ID, &entry); err != nil {
		return nil, fmt.Errorf("failed to append timeline entry: %w", err)
	}
	complaint.Timeline = append(complaint.Timeline, entry)

	s.publish(entity.EventAssigned, complaint)
	return complaint, nil
}

func (s *complaintService) AddComment(ctx context.Context, id, text string, actor Actor) (*entity.Complaint, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	complaint.UpdatedAt = now
	written, err := s.repo.Update(ctx, complaint, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to touch complaint: %w", err)
	}
	if !written {
		return nil, ErrComplaintNotFound
	}
	complaint.Revision++

	comment := entity.Comment{
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		Text:       text,
		Timestamp:  now,
	}
	if err := s.repo.AppendComment(ctx, complaint.ID, &comment); err != nil {
		return nil, fmt.Errorf("failed to append comment: %w", err)
	}
	complaint.Comments = append(complaint.Comments, comment)

	return complaint, nil
}

func (s *complaintService) Delete(ctx context.Context, id string) error {
	// Suppression définitive, sans tombstone ni contrôle de références
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete complaint: %w", err)
	}
	if !found {
		return ErrComplaintNotFound
	}
	return nil
}

// authorizePatch applique la table de capacités champ par champ.
// Aucun graphe de transitions n'est imposé : tout statut peut suivre tout
// autre. Le citoyen propriétaire peut seulement rouvrir (retour à pending).
func authorizePatch(c *entity.Complaint, patch UpdatePatch, actor Actor) error {
	if patch.Status != nil && !actor.Role.Can(entity.CapChangeStatus) {
		// Réouverture par le propriétaire : seulement depuis un statut terminal
		reopen := actor.Role == entity.RoleCitizen &&
			c.CitizenID == actor.ID &&
			*patch.Status == entity.StatusPending &&
			isTerminal(c.Status)
		if !reopen {
			return ErrForbidden
		}
	}
	if patch.Priority != nil && !actor.Role.Can(entity.CapChangePriority) {
		return ErrForbidden
	}
	if patch.AssignedTo != nil && !actor.Role.Can(entity.CapAssign) {
		return ErrForbidden
	}
	if patch.AssignedDepartment != nil && !actor.Role.Can(entity.CapReassignDepartment) {
		return ErrForbidden
	}
	if (patch.Title != nil || patch.Description != nil || patch.Category != nil || patch.Images != nil) &&
		!actor.Role.Can(entity.CapEditDetails) {
		return ErrForbidden
	}
	return nil
}

func isTerminal(s entity.ComplaintStatus) bool {
	switch s {
	case entity.StatusResolved, entity.StatusClosed, entity.StatusRejected:
		return true
	}
	return false
}

// publish envoie l'événement en asynchrone ; l'absence de broker (mode
// dégradé) ne bloque jamais l'écriture
func (s *complaintService) publish(eventType entity.ComplaintEventType, c *entity.Complaint) {
	if s.publisher == nil {
		return
	}
	event := entity.ComplaintEvent{
		Type:        eventType,
		ComplaintID: c.ID,
		Category:    c.Category,
		Status:      c.Status,
		OccurredAt:  time.Now().UTC(),
	}
	go func() {
		// Contexte background pour ne pas être annulé par la requête HTTP
		if err := s.publisher.Publish(context.Background(), queue.QueueComplaintEvents, event); err != nil {
			log.Printf("[EVENTS] failed to publish %s for complaint %s: %v", eventType, c.ID, err)
		}
	}()
}
