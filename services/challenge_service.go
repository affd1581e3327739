package services

import (
	"errors"
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

type CreateChallengeRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ChallengeMode string  `json:"challenge_mode"`
	GoalType      string  `json:"goal_type"`
	GoalTarget    float64 `json:"goal_target"`
	GoalUnit      string  `json:"goal_unit"`
	Deadline      string  `json:"deadline"`
	CheckInSource string  `json:"check_in_source"`
}

var validGoalTypes = map[models.GoalType]bool{
	models.GoalDistanceKm:     true,
	models.GoalWeightLossKg:   true,
	models.GoalWorkoutCount:   true,
	models.GoalCaloriesBurned: true,
	models.GoalCustom:         true,
}

// CreateChallenge validates the request and inserts a challenge in
// INITIALIZED with a fresh invite token. The token is the only way in
// for bettors and is never included in challenge responses.
func CreateChallenge(db *gorm.DB, creatorID string, req CreateChallengeRequest, now time.Time) (*models.Challenge, error) {
	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if req.GoalTarget <= 0 {
		return nil, &ValidationError{Field: "goal_target", Reason: "must be positive"}
	}

	mode := models.ChallengeMode(req.ChallengeMode)
	if mode == "" {
		mode = models.ModeSingleDay
	}
	if mode != models.ModeSingleDay && mode != models.ModeMultiDay {
		return nil, &ValidationError{Field: "challenge_mode", Reason: "must be SINGLE_DAY or MULTI_DAY"}
	}

	goalType := models.GoalType(req.GoalType)
	if !validGoalTypes[goalType] {
		return nil, &ValidationError{Field: "goal_type", Reason: "unknown goal type"}
	}
	// Multi-day challenges count check-in days regardless of goal type.
	if mode == models.ModeMultiDay && goalType == models.GoalWeightLossKg {
		return nil, &ValidationError{Field: "goal_type", Reason: "weight loss goals are single-day only"}
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return nil, &ValidationError{Field: "deadline", Reason: "must be RFC3339"}
	}
	if !deadline.After(now) {
		return nil, &ValidationError{Field: "deadline", Reason: "must be in the future"}
	}

	source := models.CheckInSource(req.CheckInSource)
	if source == "" {
		source = models.CheckInManual
	}
	if source != models.CheckInManual && source != models.CheckInStrava {
		return nil, &ValidationError{Field: "check_in_source", Reason: "must be MANUAL or STRAVA"}
	}

	challenge := models.Challenge{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Title:         req.Title,
		Slug:          slug.Make(req.Title),
		Description:   req.Description,
		ChallengeMode: mode,
		GoalType:      goalType,
		GoalTarget:    req.GoalTarget,
		GoalUnit:      req.GoalUnit,
		Status:        models.ChallengeInitialized,
		Deadline:      deadline.UTC(),
		CheckInSource: source,
		InviteToken:   uuid.NewString(),
	}
	if err := db.Create(&challenge).Error; err != nil {
		return nil, err
	}

	utils.WithFields(logrus.Fields{
		"challenge_id": challenge.ID,
		"creator_id":   creatorID,
		"goal_type":    goalType,
	}).Info("challenge created")
	return &challenge, nil
}

// Create handles POST /challenges.
func (s *ChallengeService) Create(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	challenge, err := CreateChallenge(s.DB, callerID, req, time.Now().UTC())
	if err != nil {
		return challengeError(c, err)
	}
	// The creator gets the token exactly once at creation time.
	return c.Status(201).JSON(fiber.Map{
		"challenge":    challenge,
		"invite_token": challenge.InviteToken,
	})
}

// GetAll handles GET /challenges — public listing, newest first.
func (s *ChallengeService) GetAll(c *fiber.Ctx) error {
	q := s.DB.Preload("Creator").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var challenges []models.Challenge
	if err := q.Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenges"})
	}

	out := make([]models.MiniChallenge, 0, len(challenges))
	for _, ch := range challenges {
		var betsCount int64
		s.DB.Model(&models.Bet{}).Where("challenge_id = ?", ch.ID).Count(&betsCount)
		out = append(out, models.MiniChallenge{
			ID:              ch.ID,
			Title:           ch.Title,
			Slug:            ch.Slug,
			Status:          ch.Status,
			ChallengeMode:   ch.ChallengeMode,
			GoalType:        ch.GoalType,
			GoalTarget:      ch.GoalTarget,
			GoalUnit:        ch.GoalUnit,
			CurrentProgress: ch.CurrentProgress,
			Deadline:        ch.Deadline,
			CreatorID:       ch.CreatorID,
			CreatorName:     ch.Creator.Name,
			BetsCount:       betsCount,
			CreatedAt:       ch.CreatedAt,
		})
	}
	return c.JSON(out)
}

// GetMine handles GET /challenges/mine.
func (s *ChallengeService) GetMine(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var challenges []models.Challenge
	if err := s.DB.Where("creator_id = ?", callerID).
		Order("created_at DESC").Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenges"})
	}

	for i := range challenges {
		s.DB.Model(&models.Bet{}).Where("challenge_id = ?", challenges[i].ID).Count(&challenges[i].BetsCount)
		s.DB.Model(&models.Workout{}).Where("challenge_id = ?", challenges[i].ID).Count(&challenges[i].WorkoutsCount)
	}
	return c.JSON(challenges)
}

// GetByID handles GET /challenges/:id.
func (s *ChallengeService) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var challenge models.Challenge
	err := s.DB.Preload("Creator").Preload("Bets").Preload("Bets.User").
		First(&challenge, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenge"})
	}

	pool, err := GetBetPool(s.DB, challenge.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute pool"})
	}
	challenge.BetsCount = int64(pool.BetsCount)
	return c.JSON(fiber.Map{"challenge": challenge, "pool": pool})
}

// Update handles PATCH /challenges/:id. Only cosmetic fields move, and
// only while the challenge can still change shape.
func (s *ChallengeService) Update(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	id := c.Params("id")

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenge"})
	}
	if challenge.CreatorID != callerID {
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can update a challenge"})
	}
	if challenge.Status.IsTerminal() || challenge.Status == models.ChallengePendingResolution {
		return c.Status(400).JSON(fiber.Map{"error": "challenge can no longer be edited"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
		updates["slug"] = slug.Make(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return c.JSON(challenge)
	}

	if err := s.DB.Model(&challenge).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update challenge"})
	}
	return c.JSON(challenge)
}

// GetInviteToken handles GET /challenges/:id/invite. Creator-only; the
// token never appears on any other surface.
func (s *ChallengeService) GetInviteToken(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenge"})
	}
	if challenge.CreatorID != callerID {
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can read the invite token"})
	}
	return c.JSON(fiber.Map{"invite_token": challenge.InviteToken})
}

// GetProgress handles GET /challenges/:id/progress — the compact
// projection polled by the frontend.
func (s *ChallengeService) GetProgress(c *fiber.Ctx) error {
	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch challenge"})
	}
	return c.JSON(models.ProgressView{
		ChallengeID:     challenge.ID,
		CurrentProgress: challenge.CurrentProgress,
		GoalTarget:      challenge.GoalTarget,
		GoalUnit:        challenge.GoalUnit,
		Deadline:        challenge.Deadline,
		Status:          challenge.Status,
	})
}

// Register handles PATCH /challenges/:id/register — binds the on-chain
// escrow id after the creator's create transaction confirms.
func (s *ChallengeService) Register(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		ContractChallengeID string `json:"contract_challenge_id"`
		TxHash              string `json:"tx_hash"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.ContractChallengeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "contract_challenge_id is required"})
	}

	challenge, err := RegisterOnChain(s.DB, c.Params("id"), callerID, req.ContractChallengeID, req.TxHash)
	if err != nil {
		return challengeError(c, err)
	}
	return c.JSON(challenge)
}

// Resolve handles POST /challenges/:id/resolve.
func (s *ChallengeService) Resolve(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		Succeeded bool   `json:"succeeded"`
		Note      string `json:"note"`
		TxHash    string `json:"tx_hash"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	challenge, err := ResolveChallenge(s.DB, c.Params("id"), callerID, req.Succeeded, req.Note, req.TxHash, time.Now().UTC())
	if err != nil {
		return challengeError(c, err)
	}
	return c.JSON(challenge)
}

// Finalize handles POST /challenges/:id/finalize.
func (s *ChallengeService) Finalize(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		TxHash string `json:"tx_hash"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	challenge, err := FinalizeChallenge(s.DB, c.Params("id"), req.TxHash, time.Now().UTC())
	if err != nil {
		return challengeError(c, err)
	}
	return c.JSON(challenge)
}

func challengeError(c *fiber.Ctx, err error) error {
	var tErr *TransitionError
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "challenge not found"})
	case errors.Is(err, ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can perform this action"})
	case errors.As(err, &tErr):
		return c.Status(400).JSON(fiber.Map{"error": tErr.Reason})
	case errors.As(err, &vErr):
		return c.Status(400).JSON(fiber.Map{"error": vErr.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"error": "internal error"})
}
