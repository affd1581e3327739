package models

import "time"

// DailyCheckIn is one attendance record for one calendar day of a
// MULTI_DAY challenge. Date is always midnight UTC; the unique index on
// (challenge_id, date) is the idempotency key for concurrent upserts.
// Auto-derived check-ins never overwrite a manual check-in's note.
type DailyCheckIn struct {
	ID          string        `json:"id" gorm:"primaryKey;type:uuid"`
	ChallengeID string        `json:"challenge_id" gorm:"type:uuid;not null;uniqueIndex:idx_checkin_day"`
	UserID      string        `json:"user_id" gorm:"type:uuid;not null;index"`
	Date        time.Time     `json:"date" gorm:"not null;uniqueIndex:idx_checkin_day"`
	Note        string        `json:"note"`
	Source      CheckInSource `json:"source" gorm:"type:varchar(16);not null;default:'MANUAL'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
