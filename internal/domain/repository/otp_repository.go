package repository

import (
	"context"
	"time"
)

// OTPRepository stocke les codes à usage unique, avec expiration gérée par le
// backend (TTL Redis). Le code n'est supprimé qu'après vérification réussie :
// une tentative avec un mauvais code ne consomme pas l'OTP.
type OTPRepository interface {
	Save(ctx context.Context, mobile, code string, ttl time.Duration) error
	// Get retourne "" si aucun code n'est en attente (absent ou expiré)
	Get(ctx context.Context, mobile string) (string, error)
	Delete(ctx context.Context, mobile string) error
}
