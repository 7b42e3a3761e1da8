package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

type RegisterStaffInput struct {
	Name       string
	Username   string
	Password   string
	Role       entity.UserRole
	Department string
}

type AuthService interface {
	// StaffLogin authentifie le personnel par username/mot de passe
	StaffLogin(ctx context.Context, username, password string) (*entity.User, string, error)
	// SendOTP génère et stocke un code à usage unique pour ce mobile
	SendOTP(ctx context.Context, mobile string) error
	// VerifyOTP valide le code, crée le citoyen au premier passage et retourne
	// un token de session
	VerifyOTP(ctx context.Context, mobile, code string) (*entity.User, string, error)
	RegisterStaff(ctx context.Context, input RegisterStaffInput) (*entity.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims embarquées dans le JWT ; sub = id utilisateur
type Claims struct {
	Name       string          `json:"name"`
	Role       entity.UserRole `json:"role"`
	Department string          `json:"department,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	users repository.UserRepository
	otps  repository.OTPRepository
	// jwtSecret signe les tokens de session (HS256)
	jwtSecret []byte
	// staticOTP court-circuite la génération aléatoire en environnement de
	// démo ; vide en production
	staticOTP string
	otpTTL    time.Duration
}

func NewAuthService(users repository.UserRepository, otps repository.OTPRepository, jwtSecret, staticOTP string, otpTTL time.Duration) AuthService {
	return &authService{
		users:     users,
		otps:      otps,
		jwtSecret: []byte(jwtSecret),
		staticOTP: staticOTP,
		otpTTL:    otpTTL,
	}
}

func (s *authService) StaffLogin(ctx context.Context, username, password string) (*entity.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.Role.IsStaff() {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Non bloquant : la connexion reste valide
		log.Printf("[AUTH] failed to record last login for %s: %v", user.ID, err)
	}

	return user, token, nil
}

func (s *authService) SendOTP(ctx context.Context, mobile string) error {
	if mobile == "" {
		return fmt.Errorf("mobile number is required")
	}
	if s.otps == nil {
		return fmt.Errorf("OTP store unavailable")
	}

	code := s.staticOTP
	if code == "" {
		generated, err := randomOTP()
		if err != nil {
			return fmt.Errorf("failed to generate OTP: %w", err)
		}
		code = generated
	}

	if err := s.otps.Save(ctx, mobile, code, s.otpTTL); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	// Pas de passerelle SMS branchée : le code part dans les logs serveur.
	// TODO: brancher l'envoi SMS quand le fournisseur sera choisi.
	log.Printf("[AUTH] OTP for %s: %s (valid %s)", mobile, code, s.otpTTL)
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, mobile, code string) (*entity.User, string, error) {
	if s.otps == nil {
		return nil, "", fmt.Errorf("OTP store unavailable")
	}

	stored, err := s.otps.Get(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load OTP: %w", err)
	}
	if stored == "" {
		return nil, "", ErrOTPExpired
	}
	// Un mauvais code ne consomme pas l'OTP : le citoyen peut retenter
	if stored != code {
		return nil, "", ErrInvalidOTP
	}
	if err := s.otps.Delete(ctx, mobile); err != nil {
		return nil, "", fmt.Errorf("failed to consume OTP: %w", err)
	}

	// Premier passage = création idempotente du compte citoyen
	name := "Citizen User"
	if len(mobile) >= 4 {
		name = "Citizen User " + mobile[len(mobile)-4:]
	}
	user, err := s.users.UpsertCitizen(ctx, mobile, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert citizen: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) RegisterStaff(ctx context.Context, input RegisterStaffInput) (*entity.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if !input.Role.IsStaff() {
		return nil, fmt.Errorf("invalid staff role: %s", input.Role)
	}

	existing, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		Department:   input.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	claims := Claims{
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// randomOTP tire un code à 6 chiffres via crypto/rand
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
