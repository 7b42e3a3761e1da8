package repository

import (
	"context"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// Les getters retournent (nil, nil) si l'utilisateur n'existe pas
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByMobile(ctx context.Context, mobile string) (*entity.User, error)
	// UpsertCitizen crée le citoyen s'il n'existe pas encore pour ce mobile,
	// sinon retourne l'enregistrement existant (création idempotente)
	UpsertCitizen(ctx context.Context, mobile, name string) (*entity.User, error)
	ListStaff(ctx context.Context) ([]entity.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
