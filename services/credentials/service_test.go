package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudkeep/authd/testutils"
)

func newTestService() *Service {
	cfg := testutils.GetTestConfig()
	return NewService(&cfg.Password, nil)
}

func TestValidatePassword(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Secret123", false},
		{"minimum length", "12345678", false},
		{"maximum length", "abcdefghijklmnopqrstuvwxyz123456", false},
		{"too short", "1234567", true},
		{"too long", "abcdefghijklmnopqrstuvwxyz1234567", true},
		{"cyrillic letters", "пароль123456", true},
		{"mixed cyrillic", "passwordЯ123", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	svc := newTestService()

	assert.True(t, svc.ValidEmail("a@x.com"))
	assert.True(t, svc.ValidEmail("user.name+tag@example.co.uk"))
	assert.False(t, svc.ValidEmail(""))
	assert.False(t, svc.ValidEmail("not-an-email"))
	assert.False(t, svc.ValidEmail("missing@domain @space.com"))
	assert.False(t, svc.ValidEmail("Name <a@x.com>"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := newTestService()

	hash, err := svc.HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.NoError(t, svc.VerifyPassword(hash, "Secret123"))
	assert.ErrorIs(t, svc.VerifyPassword(hash, "Wrong1234"), ErrInvalidCredentials)
}

func TestHashPassword_RejectsInvalid(t *testing.T) {
	svc := newTestService()

	_, err := svc.HashPassword("short")
	assert.Error(t, err)
}

func TestMustHashPassword_PanicsOnInvalid(t *testing.T) {
	svc := newTestService()

	assert.Panics(t, func() {
		svc.MustHashPassword("short")
	})
}
