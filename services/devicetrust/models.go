package devicetrust

import (
	"time"

	"github.com/cloudkeep/authd/services/fingerprint"
)

// TrustRecord holds the devices and network addresses an account has
// confirmed. Both lists are append-only sets: membership is checked by
// exact user-agent string and exact address string, never by recency.
type TrustRecord struct {
	ID        uint                      `json:"id" gorm:"primaryKey"`
	AccountID string                    `json:"account_id" gorm:"uniqueIndex;size:36;not null"`
	Devices   []fingerprint.Fingerprint `json:"devices" gorm:"serializer:json"`
	Addresses []string                  `json:"addresses" gorm:"serializer:json"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

func (TrustRecord) TableName() string {
	return "trust_records"
}

// Evaluation is the outcome of comparing an incoming fingerprint and
// address against a trust record. When NeedsUpdate is set, Devices and
// Addresses carry the augmented lists; they are not persisted here.
type Evaluation struct {
	Trusted       bool
	NeedsUpdate   bool
	RecordMissing bool
	Devices       []fingerprint.Fingerprint
	Addresses     []string
}
