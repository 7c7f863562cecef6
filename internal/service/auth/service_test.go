package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/pkg/auth"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0, len(f.byEmail))
	for _, u := range f.byEmail {
		users = append(users, u)
	}
	return users, nil
}

type fakeEmail struct {
	welcomed []string
}

func (f *fakeEmail) SendWelcome(ctx context.Context, to, name string) error {
	f.welcomed = append(f.welcomed, to)
	return nil
}

func (f *fakeEmail) SendDigest(ctx context.Context, to, subject, body string) error { return nil }

func (f *fakeEmail) SendCustom(ctx context.Context, to, subject, content string) error { return nil }

func newTestService() (Service, *fakeUserRepo, *fakeEmail) {
	repo := newFakeUserRepo()
	mail := &fakeEmail{}
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewService(repo, jwtSvc, mail, zerolog.Nop()), repo, mail
}

func TestRegisterHashesPasswordAndSendsWelcome(t *testing.T) {
	svc, repo, mail := newTestService()

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
		Name:     "Pat",
	})
	require.NoError(t, err)

	stored := repo.byEmail["pat@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, []string{"pat@example.com"}, mail.welcomed)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	req := &model.RegisterRequest{Email: "pat@example.com", Password: "correct horse", Name: "Pat"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
		Name:     "Pat",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), "pat@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)

	claims, err := svc.ValidateToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.Equal(t, tokens.User.ID, claims.UserID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "pat@example.com",
		Password: "correct horse",
		Name:     "Pat",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "pat@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}
