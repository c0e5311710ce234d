package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"parkly/internal/shared/config"
	"parkly/internal/users"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDeps(t *testing.T, accessTTL time.Duration) (*gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&users.User{}))

	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:           "test-secret",
		JWTExpiresIn:     accessTTL,
		RefreshExpiresIn: time.Hour,
	}}
	return db, cfg
}

func newTestService(t *testing.T, accessTTL time.Duration) Service {
	t.Helper()
	db, cfg := newTestDeps(t, accessTTL)
	return NewService(NewRepository(db), cfg)
}

func register(t *testing.T, svc Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	resp := register(t, svc, " Asha@Example.com ")
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, string(users.RoleUser), resp.User.Role)
	assert.EqualValues(t, 900, resp.ExpiresIn)

	_, err := svc.Register(ctx, &RegisterRequest{FirstName: "X", LastName: "Y", Email: "asha@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	login, err := svc.Login(ctx, &LoginRequest{Email: "ASHA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Tokens(t *testing.T) {
	svc := newTestService(t, 15*time.Minute)
	ctx := context.Background()
	resp := register(t, svc, "tom@example.com")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, tokenTypeAccess, claims.Type)
	assert.Equal(t, "USER", claims.Role)

	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot refresh")

	pair, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	resp := register(t, svc, "late@example.com")

	_, err := svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_ChangePassword(t *testing.T) {
	svc := newTestService(t, 15*time.Minute)
	ctx := context.Background()
	resp := register(t, svc, "pw@example.com")
	userID := resp.User.ID

	err := svc.ChangePassword(ctx, userID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, userID, &ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}))

	_, err = svc.Login(ctx, &LoginRequest{Email: "pw@example.com", Password: "another1"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "pw@example.com", profile.Email)
}

func TestRepository_GetUserByID(t *testing.T) {
	db, _ := newTestDeps(t, time.Minute)
	repo := NewRepository(db)
	ctx := context.Background()

	user := &users.User{FirstName: "Tom", LastName: "Becker", Email: "tom@example.com", Password: "x"}
	require.NoError(t, repo.CreateUser(ctx, user))

	found, err := repo.GetUserByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = repo.GetUserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = repo.CreateUser(ctx, &users.User{FirstName: "T", LastName: "B", Email: "tom@example.com", Password: "x"})
	assert.Equal(t, ErrUserAlreadyExists, err)
}
