package services

import (
	"context"
	"errors"
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BetService struct {
	DB     *gorm.DB
	Escrow *EscrowClient // optional; nil disables tx verification
}

func NewBetService(db *gorm.DB, escrow *EscrowClient) *BetService {
	return &BetService{DB: db, Escrow: escrow}
}

// PlaceBetInput carries everything the gate checks. CallerID is always
// threaded in explicitly — no ambient identity anywhere in the core.
type PlaceBetInput struct {
	ChallengeID string
	CallerID    string
	Side        models.BetSide
	AmountEth   string
	AmountWei   string
	TxHash      string
	InviteToken string
}

// PlaceBet appends a bet after the invite gate and lifecycle checks
// pass, and fires INITIALIZED → ACTIVE if this is the first bet.
// Returns the bet and whether this call performed the activation.
//
// The tx hash is stored for audit; its validity does not gate
// acceptance. A bad client-reported hash is reconciled out-of-band —
// the chain holds the funds either way.
func PlaceBet(db *gorm.DB, in PlaceBetInput) (*models.Bet, bool, error) {
	if in.Side != models.BetFor && in.Side != models.BetAgainst {
		return nil, false, &ValidationError{Field: "side", Reason: "must be FOR or AGAINST"}
	}
	if _, err := utils.ParseWei(in.AmountWei); err != nil {
		return nil, false, &ValidationError{Field: "amount_wei", Reason: err.Error()}
	}

	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", in.ChallengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if challenge.Status != models.ChallengeInitialized && challenge.Status != models.ChallengeActive {
		return nil, false, &TransitionError{Reason: "challenge is not open for betting"}
	}
	if challenge.CreatorID == in.CallerID {
		return nil, false, ErrForbidden
	}
	// Wrong token and no token read the same from outside.
	if challenge.InviteToken == "" || challenge.InviteToken != in.InviteToken {
		return nil, false, ErrAccessDenied
	}

	bet := models.Bet{
		ID:          uuid.NewString(),
		ChallengeID: challenge.ID,
		UserID:      in.CallerID,
		Side:        in.Side,
		AmountEth:   in.AmountEth,
		AmountWei:   in.AmountWei,
		Status:      models.BetConfirmed,
		TxHash:      in.TxHash,
	}
	if err := db.Create(&bet).Error; err != nil {
		return nil, false, err
	}

	// First accepted bet activates the challenge. Conditional update:
	// a concurrent first bet that loses this race still keeps its row.
	activated, err := activateIfInitialized(db, challenge.ID)
	if err != nil {
		return &bet, false, err
	}
	if activated {
		utils.WithFields(logrus.Fields{
			"challenge_id": challenge.ID,
			"bet_id":       bet.ID,
		}).Info("challenge activated by first bet")
	}
	return &bet, activated, nil
}

// GetBetPool sums a challenge's stakes per side in wei.
func GetBetPool(db *gorm.DB, challengeID string) (*models.BetPool, error) {
	var bets []models.Bet
	if err := db.Where("challenge_id = ?", challengeID).Find(&bets).Error; err != nil {
		return nil, err
	}
	var forWei, againstWei []string
	for _, b := range bets {
		if b.Side == models.BetFor {
			forWei = append(forWei, b.AmountWei)
		} else {
			againstWei = append(againstWei, b.AmountWei)
		}
	}
	return &models.BetPool{
		TotalFor:     utils.SumWei(forWei).String(),
		TotalAgainst: utils.SumWei(againstWei).String(),
		BetsCount:    len(bets),
	}, nil
}

// Create handles POST /bets.
func (s *BetService) Create(c *fiber.Ctx) error {
	type Req struct {
		ChallengeID string `json:"challenge_id"`
		Side        string `json:"side"`
		AmountEth   string `json:"amount_eth"`
		AmountWei   string `json:"amount_wei"`
		TxHash      string `json:"tx_hash"`
		InviteToken string `json:"invite_token"`
	}
	callerID, ok := c.Locals("user_id").(string)
	if !ok || callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.ChallengeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "challenge_id is required"})
	}

	bet, _, err := PlaceBet(s.DB, PlaceBetInput{
		ChallengeID: req.ChallengeID,
		CallerID:    callerID,
		Side:        models.BetSide(req.Side),
		AmountEth:   req.AmountEth,
		AmountWei:   req.AmountWei,
		TxHash:      req.TxHash,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		return betError(c, err)
	}

	// Best-effort receipt check for the audit trail. Failure never rolls
	// back the bet row — log and move on.
	if s.Escrow != nil && bet.TxHash != "" {
		go s.verifyBetTx(bet.ID, bet.TxHash)
	}

	return c.Status(201).JSON(bet)
}

func (s *BetService) verifyBetTx(betID, txHash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ok, err := s.Escrow.VerifyTransaction(ctx, txHash)
	if err != nil {
		utils.WithFields(logrus.Fields{"bet_id": betID, "tx_hash": txHash}).
			Warnf("bet tx verification skipped: %v", err)
		return
	}
	if !ok {
		utils.WithFields(logrus.Fields{"bet_id": betID, "tx_hash": txHash}).
			Warn("bet tx reverted on-chain — flagging for manual reconciliation")
		return
	}
	utils.WithFields(logrus.Fields{"bet_id": betID}).Debug("bet tx confirmed on-chain")
}

// List handles GET /bets — the caller's bets, or a challenge's bets
// when ?challenge_id= is given.
func (s *BetService) List(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	q := s.DB.Preload("Challenge").Preload("User").Order("created_at DESC")
	if challengeID := c.Query("challenge_id"); challengeID != "" {
		q = q.Where("challenge_id = ?", challengeID)
	} else {
		q = q.Where("user_id = ?", callerID)
	}

	var bets []models.Bet
	if err := q.Find(&bets).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch bets"})
	}
	return c.JSON(bets)
}

func betError(c *fiber.Ctx, err error) error {
	var tErr *TransitionError
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
	case errors.Is(err, ErrAccessDenied):
		return c.Status(403).JSON(fiber.Map{"error": "invalid invite — you need an invite from the challenge creator"})
	case errors.Is(err, ErrForbidden):
		return c.Status(400).JSON(fiber.Map{"error": "cannot bet on your own challenge"})
	case errors.As(err, &tErr):
		return c.Status(400).JSON(fiber.Map{"error": tErr.Reason})
	case errors.As(err, &vErr):
		return c.Status(400).JSON(fiber.Map{"error": vErr.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"error": "failed to place bet"})
}
