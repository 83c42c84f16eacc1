package service

import (
	"context"
	"testing"
	"time"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	nextID int
	users  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.users[stored.Username] = &stored
	out := stored
	return &out, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestAuth() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewAuthService(repo, "test-secret", time.Hour), repo
}

func TestRegisterAndLogin(t *testing.T) {
	auth, repo := newTestAuth()
	ctx := context.Background()

	user, err := auth.Register(ctx, domain.RegisterUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "operator", user.Role)
	assert.Empty(t, user.Password)

	// the stored hash is never the raw password
	stored := repo.users["carla"]
	assert.NotEqual(t, "hunter22", stored.Password)

	resp, err := auth.Login(ctx, domain.LoginUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "operator", resp.Role)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "carla", claims["username"])
	assert.Equal(t, "operator", claims["role"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, domain.RegisterUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, domain.RegisterUserDTO{Username: "carla", Password: "other-pass"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, domain.RegisterUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, domain.LoginUserDTO{Username: "carla", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, domain.LoginUserDTO{Username: "nobody", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, domain.RegisterUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)
	resp, err := auth.Login(ctx, domain.LoginUserDTO{Username: "carla", Password: "hunter22"})
	require.NoError(t, err)

	_, err = auth.ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)

	// a token signed with a different secret is rejected
	other := NewAuthService(newMemUserRepo(), "other-secret", time.Hour)
	_, err = other.ValidateToken(resp.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// an expired token is rejected
	expired := NewAuthService(newMemUserRepo(), "test-secret", -time.Minute)
	_, err = expired.Register(ctx, domain.RegisterUserDTO{Username: "dave", Password: "hunter22"})
	require.NoError(t, err)
	stale, err := expired.Login(ctx, domain.LoginUserDTO{Username: "dave", Password: "hunter22"})
	require.NoError(t, err)
	_, err = auth.ValidateToken(stale.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
