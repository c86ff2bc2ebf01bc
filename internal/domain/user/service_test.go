package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	byEmail map[string]*User
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{byEmail: map[string]*User{}, nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = m.nextID
	m.nextID++
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func TestRegister(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Alice@Example.COM ",
		Password:  "s3cret!",
		FirstName: "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email, "email must be normalized")
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Password: "12345",
	})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "not-an-email",
		Password: "s3cret!",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "s3cret!",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email: "ALICE@example.com", Password: "other-pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "s3cret!",
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "s3cret!",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate_Deactivated(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	u, err := svc.Register(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "s3cret!",
	})
	require.NoError(t, err)
	u.IsActive = false

	_, err = svc.Authenticate(context.Background(), "alice@example.com", "s3cret!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
