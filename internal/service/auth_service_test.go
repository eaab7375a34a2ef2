package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/store"
	"github.com/danceflow/attendance-api/pkg/config"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

func testAuthService(t *testing.T) *AuthService {
	t.Helper()
	st := store.New(store.DefaultSnapshot())
	return NewAuthService(st, nil, nil, config.AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "attendance-api-test",
	})
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := testAuthService(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "neha", Password: store.DemoPassword})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "Neha", res.User.Name)
	assert.Equal(t, models.RoleTeacher, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 2, claims.UserID)
	assert.Equal(t, "neha", claims.Username)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := testAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := testAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: store.DemoPassword})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUsernameCaseSensitive(t *testing.T) {
	svc := testAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "Admin", Password: store.DemoPassword})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginMissingFields(t *testing.T) {
	svc := testAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := testAuthService(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: store.DemoPassword})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
