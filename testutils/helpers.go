package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudkeep/authd/config"
)

func SetupTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	return db
}

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "authd test",
			URL:  "http://localhost:8080",
		},
		JWT: config.JWTConfig{
			SecretKey:     "0f1e2d3c4b5a69788796a5b4c3d2e1f0aabbccdd",
			Issuer:        "cloudkeep-authd-test",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
		Password: config.PasswordConfig{
			MinLength:  8,
			MaxLength:  32,
			BcryptCost: 4,
		},
		Confirmation: config.ConfirmationConfig{
			TTL: 5 * time.Minute,
		},
	}
}
