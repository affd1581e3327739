package services

import (
	"context"
	"time"

	"grindstake/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EscrowService serves the mirrored on-chain state. Reads come from the
// escrow_mirror table kept fresh by the sync worker, with an optional
// live refresh when the client insists.
type EscrowService struct {
	DB     *gorm.DB
	Escrow *EscrowClient
}

func NewEscrowService(db *gorm.DB, escrow *EscrowClient) *EscrowService {
	return &EscrowService{DB: db, Escrow: escrow}
}

// GetMirror handles GET /challenges/:id/escrow. ?live=true bypasses the
// mirror and reads the contract directly.
func (s *EscrowService) GetMirror(c *fiber.Ctx) error {
	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenge"})
	}
	if challenge.ContractChallengeID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "challenge is not registered on-chain"})
	}

	if c.Query("live") == "true" && s.Escrow != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
		defer cancel()
		state, err := s.Escrow.GetChallengeState(ctx, *challenge.ContractChallengeID)
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": "chain read failed"})
		}
		return c.JSON(fiber.Map{
			"contract_challenge_id": *challenge.ContractChallengeID,
			"state":                 state.State,
			"total_for_wei":         state.TotalFor.String(),
			"total_against_wei":     state.TotalAgainst.String(),
			"creator_succeeded":     state.CreatorSucceeded,
			"resolved_at_unix":      state.ResolvedAt.Int64(),
		})
	}

	return s.respondMirror(c, *challenge.ContractChallengeID)
}

// GetByContractID handles GET /escrow/challenges/:contractId — mirror
// lookup keyed directly by the on-chain identifier.
func (s *EscrowService) GetByContractID(c *fiber.Ctx) error {
	return s.respondMirror(c, c.Params("contractId"))
}

func (s *EscrowService) respondMirror(c *fiber.Ctx, contractChallengeID string) error {
	var mirror models.EscrowMirror
	err := s.DB.First(&mirror, "contract_challenge_id = ?", contractChallengeID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "escrow state not mirrored yet"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch escrow state"})
	}
	return c.JSON(mirror)
}
