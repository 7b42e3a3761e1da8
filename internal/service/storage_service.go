package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/phani-001/FixMyTown/internal/platform/storage"
)

// StorageService gère les photos de signalement : le client obtient une URL
// présignée et téléverse directement vers le stockage objet
type StorageService interface {
	Initialize(ctx context.Context) error
	GenerateUploadURL(ctx context.Context, fileName string) (string, string, error)
}

type storageService struct {
	storage storage.Storage
	bucket  string
}

func NewStorageService(st storage.Storage, bucket string) StorageService {
	return &storageService{storage: st, bucket: bucket}
}

// Initialize crée le bucket au démarrage s'il n'existe pas encore
func (s *storageService) Initialize(ctx context.Context) error {
	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.storage.MakeBucket(ctx, s.bucket); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("[STORAGE] created bucket %s", s.bucket)
	}
	return nil
}

// GenerateUploadURL retourne (url présignée, nom d'objet). Le nom d'objet est
// préfixé d'un UUID pour éviter les collisions entre clients.
func (s *storageService) GenerateUploadURL(ctx context.Context, fileName string) (string, string, error) {
	if fileName == "" {
		return "", "", fmt.Errorf("file name is required")
	}

	objectName := fmt.Sprintf("%s-%s", uuid.New().String(), fileName)
	url, err := s.storage.GetPresignedUploadURL(ctx, s.bucket, objectName, 15*time.Minute)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return url, objectName, nil
}
