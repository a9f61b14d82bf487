package service

import (
	"context"
	"testing"

	"github.com/asventura96/testcenter/internal/config"
	"github.com/asventura96/testcenter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() AuthService {
	return NewAuthService(newFakeUserRepo(), &config.JWTConfig{Secret: "test-secret", ExpireHours: 1, RefreshExpHours: 2})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "Op", Email: " Op@TestCenter.local ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOperator, u.Role)
	assert.Equal(t, "op@testcenter.local", u.Email)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Dup", Email: "op@testcenter.local", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.Login(ctx, LoginRequest{Email: "op@testcenter.local", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, LoginRequest{Email: "op@testcenter.local", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)

	me, err := svc.Me(ctx, resp.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Op", me.Name)

	pair, err := svc.RefreshToken(ctx, resp.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.RefreshToken(ctx, resp.Token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	_, err := newAuthFixture().Register(context.Background(),
		RegisterRequest{Name: "Op", Email: "op@testcenter.local", Password: "password"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}
