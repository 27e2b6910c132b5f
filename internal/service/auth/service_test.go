package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/store/memstore"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

func newService(ttl time.Duration) *Service {
	return NewService(memstore.NewUserStore(), logger.NewNopLogger(), Config{
		Secret: "test-secret",
		TTL:    ttl,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(0)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Admin@Example.com", "s3cretpass", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, "admin", user.Role)
	assert.NotEqual(t, "s3cretpass", user.Password)

	token, logged, err := svc.Login(ctx, "admin@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "s3cretpass", "x")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Register(ctx, "a@b.com", "short", "x")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Register(ctx, "a@b.com", "s3cretpass", "x")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@b.com", "s3cretpass", "x")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "s3cretpass", "x")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@b.com", "wrongpass")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, _, err = svc.Login(ctx, "nobody@b.com", "s3cretpass")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newService(-time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "s3cretpass", "x")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "a@b.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	svc := newService(0)
	other := NewService(memstore.NewUserStore(), logger.NewNopLogger(), Config{Secret: "other-secret"})
	ctx := context.Background()

	_, err := other.Register(ctx, "a@b.com", "s3cretpass", "x")
	require.NoError(t, err)
	token, _, err := other.Login(ctx, "a@b.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}
