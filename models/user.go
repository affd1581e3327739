package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a local snapshot of account data the betting service needs.
// Identity is established upstream (wallet sign-in at the gateway);
// wallet address is the stable external identifier.
type User struct {
	ID            string  `json:"id" gorm:"primaryKey;type:uuid"`
	WalletAddress string  `json:"wallet_address" gorm:"uniqueIndex;not null"`
	Name          string  `json:"name"`
	Email         *string `json:"email,omitempty"`

	// Strava link state. AthleteID is the webhook owner_id key.
	StravaAthleteID    *string    `json:"strava_athlete_id,omitempty" gorm:"uniqueIndex"`
	StravaAccessToken  string     `json:"-"`
	StravaRefreshToken string     `json:"-"`
	StravaTokenExpiry  *time.Time `json:"-"`
	StravaConnected    bool       `json:"strava_connected" gorm:"default:false"`
	LastStravaSync     *time.Time `json:"last_strava_sync,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
