package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/phani-001/FixMyTown/internal/service"
)

// Stub de ComplaintService : retourne des valeurs préconfigurées, enregistre
// les arguments reçus
type stubComplaintService struct {
	complaint  *entity.Complaint
	err        error
	lastFilter repository.ComplaintFilter
	lastActor  service.Actor
	lastPatch  service.UpdatePatch
}

func (s *stubComplaintService) Create(ctx context.Context, input service.CreateComplaintInput, actor service.Actor) (*entity.Complaint, error) {
	s.lastActor = actor
	return s.complaint, s.err
}

func (s *stubComplaintService) List(ctx context.Context, filter repository.ComplaintFilter) ([]entity.Complaint, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	if s.complaint == nil {
		return []entity.Complaint{}, nil
	}
	return []entity.Complaint{*s.complaint}, nil
}

func (s *stubComplaintService) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	return s.complaint, s.err
}

func (s *stubComplaintService) Update(ctx context.Context, id string, patch service.UpdatePatch, actor service.Actor) (*entity.Complaint, error) {
	s.lastPatch = patch
	s.lastActor = actor
	return s.complaint, s.err
}

func (s *stubComplaintService) Assign(ctx context.Context, id string, input service.AssignInput, actor service.Actor) (*entity.Complaint, error) {
	s.lastActor = actor
	return s.complaint, s.err
}

func (s *stubComplaintService) AddComment(ctx context.Context, id, text string, actor service.Actor) (*entity.Complaint, error) {
	s.lastActor = actor
	return s.complaint, s.err
}

func (s *stubComplaintService) Delete(ctx context.Context, id string) error {
	return s.err
}

// fakeIdentity simule le middleware JWT
func fakeIdentity(id, name string, role entity.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("userName", name)
		c.Set("userRole", string(role))
		c.Next()
	}
}

func newTestRouter(svc service.ComplaintService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewComplaintHandler(svc, nil)
	r := gin.New()
	r.Use(fakeIdentity("cit-1", "Ravi", entity.RoleCitizen))
	r.POST("/complaints", h.Create)
	r.GET("/complaints", h.List)
	r.GET("/complaints/:id", h.Get)
	r.PATCH("/complaints/:id", h.Update)
	r.DELETE("/complaints/:id", h.Delete)
	return r
}

func perform(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleComplaint() *entity.Complaint {
	return &entity.Complaint{
		ID:        "c-1",
		Title:     "Nid de poule",
		Category:  entity.CategoryRoads,
		Status:    entity.StatusPending,
		Priority:  entity.PriorityMedium,
		CitizenID: "cit-1",
		Revision:  1,
	}
}

func TestComplaintHandlerCreate(t *testing.T) {
	t.Run("création réussie", func(t *testing.T) {
		stub := &stubComplaintService{complaint: sampleComplaint()}
		r := newTestRouter(stub)

		w := perform(r, http.MethodPost, "/complaints", gin.H{
			"title":    "Nid de poule",
			"category": "roads",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success   bool              `json:"success"`
			Complaint *entity.Complaint `json:"complaint"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "c-1", resp.Complaint.ID)

		// L'identité vient du contexte, jamais du corps de la requête
		assert.Equal(t, "cit-1", stub.lastActor.ID)
		assert.Equal(t, entity.RoleCitizen, stub.lastActor.Role)
	})

	t.Run("titre manquant", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{})
		w := perform(r, http.MethodPost, "/complaints", gin.H{"category": "roads"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestComplaintHandlerList(t *testing.T) {
	stub := &stubComplaintService{complaint: sampleComplaint()}
	r := newTestRouter(stub)

	w := perform(r, http.MethodGet, "/complaints?status=pending&category=roads&citizenId=cit-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusPending, stub.lastFilter.Status)
	assert.Equal(t, entity.CategoryRoads, stub.lastFilter.Category)
	assert.Equal(t, "cit-1", stub.lastFilter.CitizenID)
}

func TestComplaintHandlerGet(t *testing.T) {
	t.Run("introuvable => 404", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{err: service.ErrComplaintNotFound})
		w := perform(r, http.MethodGet, "/complaints/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("trouvé => 200", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{complaint: sampleComplaint()})
		w := perform(r, http.MethodGet, "/complaints/c-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestComplaintHandlerUpdate(t *testing.T) {
	t.Run("conflit de revision => 409", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{err: service.ErrRevisionConflict})
		w := perform(r, http.MethodPatch, "/complaints/c-1", gin.H{
			"status":           "resolved",
			"expectedRevision": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("permission refusée => 403", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{err: service.ErrForbidden})
		w := perform(r, http.MethodPatch, "/complaints/c-1", gin.H{"priority": "high"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("le patch transmet les champs présents seulement", func(t *testing.T) {
		stub := &stubComplaintService{complaint: sampleComplaint()}
		r := newTestRouter(stub)

		w := perform(r, http.MethodPatch, "/complaints/c-1", gin.H{"status": "in_progress", "note": "En route"})
		assert.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, stub.lastPatch.Status)
		assert.Equal(t, entity.StatusInProgress, *stub.lastPatch.Status)
		assert.Equal(t, "En route", stub.lastPatch.Note)
		assert.Nil(t, stub.lastPatch.Priority)
		assert.Nil(t, stub.lastPatch.Title)
		assert.Nil(t, stub.lastPatch.ExpectedRevision)
	})
}

func TestComplaintHandlerDelete(t *testing.T) {
	t.Run("suppression => 200", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{})
		w := perform(r, http.MethodDelete, "/complaints/c-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("introuvable => 404", func(t *testing.T) {
		r := newTestRouter(&stubComplaintService{err: service.ErrComplaintNotFound})
		w := perform(r, http.MethodDelete, "/complaints/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
