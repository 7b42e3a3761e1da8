package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

// Mock en mémoire de ComplaintRepository, fidèle aux contrats de l'interface :
// (nil, nil) pour un id inconnu, filtrage conjonctif, contrôle de revision
type mockComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*entity.Complaint
	nextSeq    int64
}

func newMockComplaintRepo() *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[string]*entity.Complaint)}
}

func (m *mockComplaintRepo) Create(ctx context.Context, c *entity.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Timeline = append([]entity.TimelineEntry{}, c.Timeline...)
	for i := range cp.Timeline {
		m.nextSeq++
		cp.Timeline[i].Seq = m.nextSeq
	}
	cp.Comments = append([]entity.Comment{}, c.Comments...)
	m.complaints[c.ID] = &cp
	return nil
}

func (m *mockComplaintRepo) List(ctx context.Context, filter repository.ComplaintFilter) ([]entity.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Complaint
	for _, c := range m.complaints {
		if filter.CitizenID != "" && c.CitizenID != filter.CitizenID {
			continue
		}
		if filter.AssignedTo != "" && c.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *mockComplaintRepo) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Timeline = append([]entity.TimelineEntry{}, c.Timeline...)
	cp.Comments = append([]entity.Comment{}, c.Comments...)
	return &cp, nil
}

func (m *mockComplaintRepo) Update(ctx context.Context, c *entity.Complaint, expectedRevision int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.complaints[c.ID]
	if !ok {
		return false, nil
	}
	if expectedRevision >= 0 && stored.Revision != expectedRevision {
		return false, nil
	}
	cp := *c
	cp.Revision = stored.Revision + 1
	cp.Timeline = stored.Timeline
	cp.Comments = stored.Comments
	m.complaints[c.ID] = &cp
	return true, nil
}

func (m *mockComplaintRepo) AppendTimeline(ctx context.Context, complaintID string, entry *entity.TimelineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	entry.Seq = m.nextSeq
	c := m.complaints[complaintID]
	c.Timeline = append(c.Timeline, *entry)
	return nil
}

func (m *mockComplaintRepo) AppendComment(ctx context.Context, complaintID string, comment *entity.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	comment.Seq = m.nextSeq
	c := m.complaints[complaintID]
	c.Comments = append(c.Comments, *comment)
	return nil
}

func (m *mockComplaintRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.complaints[id]; !ok {
		return false, nil
	}
	delete(m.complaints, id)
	return true, nil
}

func (m *mockComplaintRepo) CountByCategorySince(ctx context.Context, category entity.ComplaintCategory, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.complaints {
		if c.Category == category && !c.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Mock de UserRepository
type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entity.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpsertCitizen(ctx context.Context, mobile, name string) (*entity.User, error) {
	if existing, _ := m.GetByMobile(ctx, mobile); existing != nil {
		return existing, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := &entity.User{
		ID:        "citizen-" + mobile,
		Name:      name,
		Mobile:    mobile,
		Role:      entity.RoleCitizen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) ListStaff(ctx context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.User
	for _, u := range m.users {
		if u.Role.IsStaff() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

// Mock de OTPRepository : mêmes règles d'expiration que le store Redis
type mockOTPRepo struct {
	mu    sync.Mutex
	codes map[string]otpEntry
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

func newMockOTPRepo() *mockOTPRepo {
	return &mockOTPRepo{codes: make(map[string]otpEntry)}
}

func (m *mockOTPRepo) Save(ctx context.Context, mobile, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[mobile] = otpEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *mockOTPRepo) Get(ctx context.Context, mobile string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.codes[mobile]
	if !ok || time.Now().After(e.expiresAt) {
		return "", nil
	}
	return e.code, nil
}

func (m *mockOTPRepo) Delete(ctx context.Context, mobile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, mobile)
	return nil
}
