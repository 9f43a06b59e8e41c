package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/auth/jwt"
	"github.com/quizdeck/quizdeck/internal/errs"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, email, name, passwordHash string) (Credentials, error) {
	args := m.Called(ctx, email, name, passwordHash)
	return args.Get(0).(Credentials), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (Credentials, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Credentials), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, userID uuid.UUID) (Credentials, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Credentials), args.Error(1)
}

func newTestService(store UserStore) *Service {
	return NewService(store, ServiceOptions{
		TokenConfig: jwt.TokenConfig{Secret: []byte("test-secret"), Issuer: "quizdeck-test"},
	}, zerolog.Nop())
}

func TestRegisterCreatesAccountAndIssuesToken(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	userID := uuid.New()
	store.On("Create", mock.Anything, "alice@example.com", "Alice", mock.AnythingOfType("string")).
		Return(Credentials{User: User{ID: userID, Email: "alice@example.com", Name: "Alice", CreatedAt: time.Now()}}, nil)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "sup3rsecret!",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	store.AssertExpectations(t)
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "ab1!"},
		{"no digit", "password!!"},
		{"no special char", "password123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), RegisterRequest{
				Email:    "bob@example.com",
				Password: tc.password,
				Name:     "Bob",
			})
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
	store.AssertNotCalled(t, "Create")
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	store.On("Create", mock.Anything, "alice@example.com", "Alice", mock.Anything).
		Return(Credentials{}, errs.Conflictf("duplicate key"))

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "sup3rsecret!",
		Name:     "Alice",
	})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestLoginVerifiesPassword(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	hash, err := HashPassword("sup3rsecret!")
	require.NoError(t, err)

	userID := uuid.New()
	store.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(Credentials{
			User:         User{ID: userID, Email: "alice@example.com", Name: "Alice"},
			PasswordHash: hash,
		}, nil)

	user, tokens, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "sup3rsecret!",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	hash, err := HashPassword("sup3rsecret!")
	require.NoError(t, err)

	store.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(Credentials{
			User:         User{ID: uuid.New(), Email: "alice@example.com"},
			PasswordHash: hash,
		}, nil)

	_, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-guess1!",
	})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	store.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(Credentials{}, errs.NotFoundf("user"))

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "sup3rsecret!",
	})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestLoginWithProfileCreatesAccountOnFirstSignIn(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	userID := uuid.New()
	store.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(Credentials{}, errs.NotFoundf("user"))
	store.On("Create", mock.Anything, "alice@example.com", "Alice", "").
		Return(Credentials{User: User{ID: userID, Email: "alice@example.com", Name: "Alice"}}, nil)

	user, tokens, err := svc.LoginWithProfile(context.Background(), "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	store.AssertExpectations(t)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(new(mockUserStore))

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
