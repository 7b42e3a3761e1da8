package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

type otpRepo struct {
	client *redis.Client
}

// NewOTPRepository ouvre la connexion Redis et vérifie qu'elle répond.
// L'expiration des codes est entièrement déléguée au TTL Redis.
func NewOTPRepository(redisURL string) (repository.OTPRepository, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &otpRepo{client: client}, nil
}

func otpKey(mobile string) string {
	return "otp:" + mobile
}

func (r *otpRepo) Save(ctx context.Context, mobile, code string, ttl time.Duration) error {
	return r.client.Set(ctx, otpKey(mobile), code, ttl).Err()
}

func (r *otpRepo) Get(ctx context.Context, mobile string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(mobile)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (r *otpRepo) Delete(ctx context.Context, mobile string) error {
	return r.client.Del(ctx, otpKey(mobile)).Err()
}
