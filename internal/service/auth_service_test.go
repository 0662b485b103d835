package service_test

import (
	"context"
	"testing"
	"time"

	"clinipos/internal/config"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/repository"
	"clinipos/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── In-memory UserRepository ─────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if _, exists := r.users[u.Username]; exists {
		return gorm.ErrDuplicatedKey
	}
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Active = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Active = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	require.NoError(t, err)
	u := &model.User{
		ID: uuid.New(), Username: username, FullName: "Test User",
		PasswordHash: string(hash), Role: role, Active: true,
	}
	repo.users[username] = u
	return u
}

func signToken(t *testing.T, userID, role string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "role": role,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// ── Tests: Login / Refresh ───────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "admin", "password123", "admin")
	svc := service.NewAuthService(repo, newTestCfg())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "cashier1", "correctpass", "cashier")
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cashier1", Password: "wrongpass"})
	assert.Error(t, err)
}

func TestLogin_UserNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "anypass123"})
	assert.Error(t, err)
}

func TestRefresh_Success(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "admin2", "pass1234", "admin")
	svc := service.NewAuthService(repo, newTestCfg())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin2", Password: "pass1234"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, u.Username, resp.User.Username)
}

func TestRefresh_InvalidToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Refresh(context.Background(), "this.is.garbage")
	assert.Error(t, err)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "cashier2", "pass12345", "cashier")
	svc := service.NewAuthService(repo, newTestCfg())

	expired := signToken(t, u.ID.String(), "cashier", -1*time.Second)
	_, err := svc.Refresh(context.Background(), expired)
	assert.Error(t, err)
}

// ── Tests: User CRUD ─────────────────────────────────────────────────────────

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	resp, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "newbie", FullName: "New User", Password: "securepass", Role: "cashier",
	})
	require.NoError(t, err)
	assert.Equal(t, "cashier", resp.Role)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "taken", "pass1234", "cashier")
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "taken", FullName: "Clone", Password: "securepass", Role: "cashier",
	})
	assert.ErrorContains(t, err, "already taken")
}

func TestListUsers(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "u1", "pass1234", "cashier")
	u2 := seedUser(t, repo, "u2", "pass1234", "doctor")
	svc := service.NewAuthService(repo, newTestCfg())

	require.NoError(t, repo.SoftDelete(context.Background(), u2.ID))

	active, err := svc.ListUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeactivateUser(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "goodbye", "pass1234", "cashier")
	svc := service.NewAuthService(repo, newTestCfg())

	require.NoError(t, svc.DeactivateUser(context.Background(), u.ID))

	_, err := repo.FindByUsername(context.Background(), "goodbye")
	assert.Error(t, err, "deactivated user must not be findable")
}
