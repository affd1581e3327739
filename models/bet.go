package models

// BetSide is which outcome the bettor is staking on.
type BetSide string

const (
	BetFor     BetSide = "FOR"
	BetAgainst BetSide = "AGAINST"
)

type BetStatus string

const (
	BetPending   BetStatus = "PENDING"
	BetConfirmed BetStatus = "CONFIRMED"
	BetClaimed   BetStatus = "CLAIMED"
	BetRefunded  BetStatus = "REFUNDED"
)

// Bet is a single stake on a challenge's outcome. Rows are append-only:
// cancellation and refunds are escrow-contract concerns, never a row
// mutation here. AmountWei is the canonical figure — a base-10 integer
// string so no precision is lost; AmountEth is display-only.
type Bet struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	ChallengeID string    `json:"challenge_id" gorm:"type:uuid;not null;index"`
	UserID      string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Side        BetSide   `json:"side" gorm:"type:varchar(8);not null"`
	AmountEth   string    `json:"amount_eth" gorm:"not null"`
	AmountWei   string    `json:"amount_wei" gorm:"not null"`
	Status      BetStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	TxHash      string    `json:"tx_hash"`

	Challenge Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`

	Timestamps
}

// BetPool sums a challenge's stakes per side, in wei decimal strings.
type BetPool struct {
	TotalFor     string `json:"total_for"`
	TotalAgainst string `json:"total_against"`
	BetsCount    int    `json:"bets_count"`
}
