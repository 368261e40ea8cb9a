package auth

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/toybazaar/toybazaar/internal/shared"
)

type stubCustomers struct {
	byPhone map[string]int64
	nextID  int64
}

func (s *stubCustomers) UpsertByPhone(_ context.Context, phone string) (int64, error) {
	if id, ok := s.byPhone[phone]; ok {
		return id, nil
	}
	s.nextID++
	s.byPhone[phone] = s.nextID
	return s.nextID, nil
}

func newAuthService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, &stubCustomers{byPhone: make(map[string]int64)}, 5*time.Minute, time.Hour)
}

func TestOTPRoundTrip(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	code, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)
	require.Len(t, code, 6)

	token, customerID, err := svc.VerifyOTP(ctx, "+911234567890", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.EqualValues(t, 1, customerID)

	resolved, err := svc.CustomerIDForToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, customerID, resolved)
}

func TestOTPWrongCode(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	code, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err = svc.VerifyOTP(ctx, "+911234567890", wrong)
	require.ErrorIs(t, err, shared.ErrInvalidOTP)

	// the right code still works afterwards
	token, _, err := svc.VerifyOTP(ctx, "+911234567890", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestOTPConsumedAfterSuccess(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	code, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(ctx, "+911234567890", code)
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(ctx, "+911234567890", code)
	require.ErrorIs(t, err, shared.ErrOTPExpired, "a code is single use")
}

func TestOTPAttemptBudget(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	code, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < maxAttempts; i++ {
		_, _, err = svc.VerifyOTP(ctx, "+911234567890", wrong)
		require.ErrorIs(t, err, shared.ErrInvalidOTP)
	}

	// budget exhausted: even the right code is refused
	_, _, err = svc.VerifyOTP(ctx, "+911234567890", code)
	require.ErrorIs(t, err, shared.ErrTooManyAttempts)
}

func TestOTPUnknownPhone(t *testing.T) {
	svc := newAuthService(t)
	_, _, err := svc.VerifyOTP(context.Background(), "+919999999999", "123456")
	require.ErrorIs(t, err, shared.ErrOTPExpired)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	code, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)
	token, _, err := svc.VerifyOTP(ctx, "+911234567890", code)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.CustomerIDForToken(ctx, token)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// revoking again is a no-op
	require.NoError(t, svc.Logout(ctx, token))
}

func TestRequestOTPReplacesPreviousCode(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	first, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)
	second, err := svc.RequestOTP(ctx, "+911234567890")
	require.NoError(t, err)

	if first != second {
		_, _, err = svc.VerifyOTP(ctx, "+911234567890", first)
		require.ErrorIs(t, err, shared.ErrInvalidOTP)
	}
	token, _, err := svc.VerifyOTP(ctx, "+911234567890", second)
	require.NoError(t, err)
	require.NotEmpty(t, token)
}
