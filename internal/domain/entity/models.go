package entity

import (
	"time"
)

// Définition des types ENUM pour garantir la sécurité du typage
type UserRole string
type ComplaintStatus string
type ComplaintPriority string
type ComplaintCategory string

const (
	RoleSuperAdmin     UserRole = "super_admin"
	RoleDepartmentHead UserRole = "department_head"
	RoleFieldStaff     UserRole = "field_staff"
	RoleCitizen        UserRole = "citizen"
)

const (
	StatusOpen       ComplaintStatus = "open"
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
	StatusEscalated  ComplaintStatus = "escalated"
	StatusRejected   ComplaintStatus = "rejected"
)

const (
	PriorityLow      ComplaintPriority = "low"
	PriorityMedium   ComplaintPriority = "medium"
	PriorityHigh     ComplaintPriority = "high"
	PriorityCritical ComplaintPriority = "critical"
)

const (
	CategoryRoads       ComplaintCategory = "roads"
	CategoryWater       ComplaintCategory = "water"
	CategoryElectricity ComplaintCategory = "electricity"
	CategoryGarbage     ComplaintCategory = "garbage"
	CategoryStreetlight ComplaintCategory = "streetlight"
	CategoryOther       ComplaintCategory = "other"
)

// Listes complètes des valeurs d'enum, utilisées par les agrégations
// (les catégories à zéro doivent apparaître dans les dashboards)
var AllStatuses = []ComplaintStatus{
	StatusOpen, StatusPending, StatusInProgress, StatusResolved,
	StatusClosed, StatusEscalated, StatusRejected,
}

var AllPriorities = []ComplaintPriority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical,
}

var AllCategories = []ComplaintCategory{
	CategoryRoads, CategoryWater, CategoryElectricity,
	CategoryGarbage, CategoryStreetlight, CategoryOther,
}

func (s ComplaintStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (p ComplaintPriority) Valid() bool {
	for _, v := range AllPriorities {
		if p == v {
			return true
		}
	}
	return false
}

func (c ComplaintCategory) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Location : adresse libre + coordonnées optionnelles.
// Les coordonnées sont stockées et restituées telles quelles, aucun calcul
// géographique n'est fait côté serveur.
type Location struct {
	Address string   `json:"address" db:"location_address"`
	Lat     *float64 `json:"lat,omitempty" db:"location_lat"`
	Lng     *float64 `json:"lng,omitempty" db:"location_lng"`
}

// TimelineEntry est une entrée du journal d'audit d'un signalement.
// Le journal est append-only : l'ordre d'insertion (seq) fait foi, même
// quand deux entrées partagent le même timestamp.
type TimelineEntry struct {
	Seq       int64           `json:"-" db:"seq"`
	Status    ComplaintStatus `json:"status" db:"status"`
	Timestamp time.Time       `json:"timestamp" db:"created_at"`
	Note      string          `json:"note,omitempty" db:"note"`
	UserID    string          `json:"userId,omitempty" db:"user_id"`
	UserName  string          `json:"userName,omitempty" db:"user_name"`
}

// Comment est une note libre laissée par un citoyen ou un agent.
type Comment struct {
	Seq        int64     `json:"-" db:"seq"`
	AuthorID   string    `json:"authorId" db:"author_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	AuthorRole UserRole  `json:"authorRole" db:"author_role"`
	Text       string    `json:"text" db:"body"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
}

// Complaint représente un signalement citoyen (voirie, eau, éclairage, etc.)
type Complaint struct {
	ID          string            `json:"id" db:"id"`
	Title       string            `json:"title" db:"title"`
	Description string            `json:"description" db:"description"`
	Category    ComplaintCategory `json:"category" db:"category"`
	Status      ComplaintStatus   `json:"status" db:"status"`
	Priority    ComplaintPriority `json:"priority" db:"priority"`
	Location    Location          `json:"location"`
	Images      []string          `json:"images" db:"images"`

	// CitizenID est immuable après création
	CitizenID          string `json:"citizenId" db:"citizen_id"`
	AssignedTo         string `json:"assignedTo,omitempty" db:"assigned_to"`
	AssignedDepartment string `json:"assignedDepartment,omitempty" db:"assigned_department"`

	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Revision est incrémenté à chaque mutation ; permet la détection de
	// conflits d'écriture concurrents via expected_revision
	Revision int64 `json:"revision" db:"revision"`

	Timeline []TimelineEntry `json:"timeline"`
	Comments []Comment       `json:"comments"`
}

// User définit l'utilisateur du système (citoyen, agent de terrain, chef de
// service, super admin). Les citoyens s'identifient par numéro de mobile,
// le personnel par username/mot de passe.
type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Mobile       string     `json:"mobile,omitempty" db:"mobile"`
	Username     string     `json:"username,omitempty" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"` // Le hash ne doit jamais sortir en JSON
	Role         UserRole   `json:"role" db:"role"`
	Department   string     `json:"department,omitempty" db:"department"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// IsStaff indique si le rôle appartient au personnel municipal
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleSuperAdmin, RoleDepartmentHead, RoleFieldStaff:
		return true
	}
	return false
}
