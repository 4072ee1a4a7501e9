package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/profpocket/pocket-api/internal/models"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	exists bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	if f.exists {
		return true, nil
	}
	_, ok := f.users[email]
	return ok, nil
}

func authServiceForTest(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		TokenSecret: "test_secret",
		TokenExpiry: time.Hour,
		Issuer:      "pocket-test",
	})
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := authServiceForTest(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "ana@example.com", Password: "secret1", Name: "Ana",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, repo.users["ana@example.com"].ID, claims.UID)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.exists = true
	svc := authServiceForTest(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "ana@example.com", Password: "secret1", Name: "Ana",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := authServiceForTest(newFakeUserRepo())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email", Password: "x", Name: ""})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	repo.users["ana@example.com"] = &models.User{ID: "usr-1", Email: "ana@example.com", PasswordHash: string(hash)}
	svc := authServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := authServiceForTest(newFakeUserRepo())

	_, err := svc.ValidateToken("not.a.token")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
