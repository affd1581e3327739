// models/escrow_mirror.go
package models

import (
	"time"
)

// EscrowState mirrors the contract's challenge state enum.
type EscrowState uint8

const (
	EscrowOpen EscrowState = iota
	EscrowReported
	EscrowFinalized
	EscrowRefunding
)

// EscrowMirror mirrors on-chain escrow state for a registered challenge.
// Table name: escrow_mirror.
//
// Advisory bookkeeping only: the contract is the source of truth for
// funds, this row is a read-model for dashboards and reconciliation.
// Nothing here ever gates a database lifecycle transition.
type EscrowMirror struct {
	ID                  string      `gorm:"primaryKey;type:uuid;not null" json:"id"`
	ChallengeID         string      `gorm:"type:uuid;not null;index" json:"challenge_id"`
	ContractChallengeID string      `gorm:"type:varchar(78);not null;uniqueIndex" json:"contract_challenge_id"` // Primary lookup key
	State               EscrowState `gorm:"not null" json:"state"`
	TotalForWei         string      `gorm:"not null;default:'0'" json:"total_for_wei"`
	TotalAgainstWei     string      `gorm:"not null;default:'0'" json:"total_against_wei"`
	CreatorSucceeded    *bool       `json:"creator_succeeded,omitempty"`
	ResolvedAtUnix      int64       `json:"resolved_at_unix"`
	LastCheckedAt       time.Time   `gorm:"not null" json:"last_checked_at"`
	CreatedAt           time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"not null" json:"updated_at"`
}

func (EscrowMirror) TableName() string { return "escrow_mirror" }
