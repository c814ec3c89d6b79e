package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const megabyte = 1024 * 1000

// DefaultStorageSpace is the quota assigned to new accounts.
const DefaultStorageSpace = 100 * megabyte

// Account is the registered user identity. The AccessToken and
// RefreshToken columns mirror the latest issued pair so an out-of-band
// reuse of an older refresh token can be detected; tokens themselves
// stay stateless.
type Account struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	Email            string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name             string    `json:"name" gorm:"size:100"`
	Surname          string    `json:"surname" gorm:"size:100"`
	PasswordHash     string    `json:"-" gorm:"size:255;not null"`
	Avatar           *string   `json:"avatar" gorm:"size:500"`
	StorageSpace     int64     `json:"storage_space" gorm:"not null;default:102400000"`
	UsingSpace       int64     `json:"using_space" gorm:"not null;default:0"`
	AccessToken      *string   `json:"-" gorm:"size:1000"`
	RefreshToken     *string   `json:"-" gorm:"size:1000"`
	LastLogin        *int64    `json:"last_login"`
	LastLoginDate    string    `json:"last_login_date" gorm:"size:50"`
	LastLoginPattern string    `json:"last_login_pattern" gorm:"size:50"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.StorageSpace == 0 {
		a.StorageSpace = DefaultStorageSpace
	}
	return nil
}

// Profile is the account-facing payload returned on granted sessions
// and profile queries. It never carries credentials or tokens.
type Profile struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Surname       string  `json:"surname"`
	Avatar        *string `json:"avatar"`
	StorageSpace  int64   `json:"storage_space"`
	UsingSpace    int64   `json:"using_space"`
	UsingPercent  float64 `json:"using_percent"`
	LastLoginDate string  `json:"last_login_date,omitempty"`
}

func (a *Account) Profile() *Profile {
	usingPercent := 0.0
	if a.StorageSpace > 0 {
		usingPercent = float64(a.UsingSpace) / float64(a.StorageSpace) * 100
	}

	return &Profile{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		Surname:       a.Surname,
		Avatar:        a.Avatar,
		StorageSpace:  a.StorageSpace,
		UsingSpace:    a.UsingSpace,
		UsingPercent:  usingPercent,
		LastLoginDate: a.LastLoginDate,
	}
}
