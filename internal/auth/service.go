// Package auth implements phone-number OTP login. Codes are bcrypt hashed and
// held in redis with a bounded attempt budget; successful verification mints a
// bearer token backed by a redis session entry.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/toybazaar/toybazaar/internal/shared"
)

const (
	otpLength   = 6
	maxAttempts = 5
)

// CustomerUpserter resolves a phone number to a customer id, creating the
// customer on first login. Implemented by the customers service.
type CustomerUpserter interface {
	UpsertByPhone(ctx context.Context, phone string) (int64, error)
}

// Service wraps the OTP and session flows.
type Service struct {
	client     *redis.Client
	customers  CustomerUpserter
	otpTTL     time.Duration
	sessionTTL time.Duration
}

// NewService constructs a Service.
func NewService(client *redis.Client, customers CustomerUpserter, otpTTL, sessionTTL time.Duration) *Service {
	return &Service{
		client:     client,
		customers:  customers,
		otpTTL:     otpTTL,
		sessionTTL: sessionTTL,
	}
}

type otpRecord struct {
	Hash     string `json:"hash"`
	Attempts int    `json:"attempts"`
}

func otpKey(phone string) string {
	return "otp:" + phone
}

func sessionKey(token string) string {
	return "session:" + token
}

// RequestOTP generates a fresh code for the phone number, replacing any
// previous one. The plain code is returned to the caller for delivery; only
// its hash is stored. Resending is the same operation, user initiated.
func (s *Service) RequestOTP(ctx context.Context, phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("auth: generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash otp: %w", err)
	}

	payload, err := json.Marshal(otpRecord{Hash: string(hash)})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKey(phone), payload, s.otpTTL).Err(); err != nil {
		return "", fmt.Errorf("auth: store otp: %w", err)
	}
	return code, nil
}

// VerifyOTP checks a submitted code. On success it consumes the code, upserts
// the customer and returns a bearer token with the customer id.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (string, int64, error) {
	payload, err := s.client.Get(ctx, otpKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", 0, shared.ErrOTPExpired
	}
	if err != nil {
		return "", 0, fmt.Errorf("auth: load otp: %w", err)
	}

	var record otpRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return "", 0, fmt.Errorf("auth: decode otp: %w", err)
	}
	if record.Attempts >= maxAttempts {
		return "", 0, shared.ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(record.Hash), []byte(code)) != nil {
		record.Attempts++
		if raw, err := json.Marshal(record); err == nil {
			_ = s.client.Set(ctx, otpKey(phone), raw, redis.KeepTTL).Err()
		}
		return "", 0, shared.ErrInvalidOTP
	}

	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return "", 0, fmt.Errorf("auth: consume otp: %w", err)
	}

	customerID, err := s.customers.UpsertByPhone(ctx, phone)
	if err != nil {
		return "", 0, fmt.Errorf("auth: upsert customer: %w", err)
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), customerID, s.sessionTTL).Err(); err != nil {
		return "", 0, fmt.Errorf("auth: store session: %w", err)
	}
	return token, customerID, nil
}

// CustomerIDForToken resolves a bearer token to a customer id.
func (s *Service) CustomerIDForToken(ctx context.Context, token string) (int64, error) {
	id, err := s.client.Get(ctx, sessionKey(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, shared.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("auth: load session: %w", err)
	}
	return id, nil
}

// Logout revokes a bearer token; revoking an unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
