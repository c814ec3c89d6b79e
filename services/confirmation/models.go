package confirmation

import (
	"time"
)

// PendingConfirmation gates the addition of a new device to an
// account's trust record. At most one record exists per account; it is
// renewed in place once its deadline has passed and deleted when the
// challenge is satisfied.
type PendingConfirmation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AccountID string    `json:"account_id" gorm:"uniqueIndex;size:36;not null"`
	Die       time.Time `json:"die" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (PendingConfirmation) TableName() string {
	return "pending_confirmations"
}

// Expired is a derived condition, not a stored state.
func (p *PendingConfirmation) Expired(now time.Time) bool {
	return p.Die.Before(now)
}
