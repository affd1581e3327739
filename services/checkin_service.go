package services

import (
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckInService struct {
	DB *gorm.DB
}

func NewCheckInService(db *gorm.DB) *CheckInService {
	return &CheckInService{DB: db}
}

// CheckInToday records a manual check-in for the current UTC day.
// Idempotent per day: a second call the same day updates the note and
// changes nothing else. Progress is recomputed either way.
func CheckInToday(db *gorm.DB, challengeID, callerID, note string, now time.Time) (*models.DailyCheckIn, error) {
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if challenge.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if challenge.ChallengeMode != models.ModeMultiDay {
		return nil, &TransitionError{Reason: "check-ins only apply to multi-day challenges"}
	}
	if challenge.Status != models.ChallengeActive {
		return nil, &TransitionError{Reason: "challenge is not active"}
	}

	day := utils.DayUTC(now)
	if !utils.WithinWindow(now, utils.DayUTC(challenge.CreatedAt), utils.EndOfDayUTC(challenge.Deadline)) {
		return nil, &TransitionError{Reason: "outside the challenge window"}
	}

	checkIn := models.DailyCheckIn{
		ID:          uuid.NewString(),
		ChallengeID: challenge.ID,
		UserID:      callerID,
		Date:        day,
		Note:        note,
		Source:      models.CheckInManual,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"note"}),
	}).Create(&checkIn).Error
	if err != nil {
		return nil, err
	}

	if err := RecalcChallengeProgress(db, challenge.ID); err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// Create handles POST /challenges/:id/checkins.
func (s *CheckInService) Create(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	checkIn, err := CheckInToday(s.DB, c.Params("id"), callerID, req.Note, time.Now().UTC())
	if err != nil {
		return challengeError(c, err)
	}
	return c.Status(201).JSON(checkIn)
}

// List handles GET /challenges/:id/checkins, oldest first.
func (s *CheckInService) List(c *fiber.Ctx) error {
	var checkIns []models.DailyCheckIn
	err := s.DB.Where("challenge_id = ?", c.Params("id")).
		Order("date ASC").Find(&checkIns).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch check-ins"})
	}
	return c.JSON(checkIns)
}
