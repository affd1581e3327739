package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stravaAPIBase = "https://www.strava.com/api/v3"

type StravaService struct {
	DB           *gorm.DB
	ClientID     string
	ClientSecret string
	VerifyToken  string
}

func NewStravaService(db *gorm.DB) *StravaService {
	return &StravaService{
		DB:           db,
		ClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		VerifyToken:  os.Getenv("STRAVA_VERIFY_TOKEN"),
	}
}

// stravaActivity is the subset of Strava's activity payload we keep.
type stravaActivity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	SportType      string  `json:"sport_type"`
	StartDate      string  `json:"start_date"`
	ElapsedTime    int     `json:"elapsed_time"`
	MovingTime     int     `json:"moving_time"`
	Distance       float64 `json:"distance"`
	TotalElevation float64 `json:"total_elevation_gain"`
	Calories       float64 `json:"calories"`
	AvgHeartRate   float64 `json:"average_heartrate"`
	Map            struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// MapStravaType maps Strava sport types onto our workout taxonomy.
// Unknown sports land on OTHER rather than being dropped.
func MapStravaType(sportType string) models.WorkoutType {
	switch strings.ToLower(sportType) {
	case "run", "trailrun", "virtualrun":
		return models.WorkoutRun
	case "ride", "mountainbikeride", "gravelride", "virtualride", "ebikeride":
		return models.WorkoutRide
	case "swim":
		return models.WorkoutSwim
	case "walk":
		return models.WorkoutWalk
	case "hike":
		return models.WorkoutHike
	case "weighttraining":
		return models.WorkoutWeightTraining
	case "yoga", "pilates":
		return models.WorkoutYoga
	case "crossfit", "hiit":
		return models.WorkoutCrossfit
	case "soccer", "tennis", "golf", "badminton", "pickleball", "squash":
		return models.WorkoutSport
	default:
		return models.WorkoutOther
	}
}

// upsertActivity writes one synced activity keyed on strava_activity_id.
// Re-delivered webhooks and overlapping sync windows update in place.
func upsertActivity(db *gorm.DB, userID string, act stravaActivity) error {
	startTime, err := time.Parse(time.RFC3339, act.StartDate)
	if err != nil {
		return fmt.Errorf("bad start_date on activity %d: %w", act.ID, err)
	}

	stravaID := strconv.FormatInt(act.ID, 10)
	workout := models.Workout{
		ID:               uuid.NewString(),
		UserID:           userID,
		Name:             act.Name,
		Type:             MapStravaType(act.SportType),
		Source:           models.SourceStrava,
		StravaActivityID: &stravaID,
		StartTime:        startTime.UTC(),
		DurationSeconds:  act.ElapsedTime,
		MovingSeconds:    act.MovingTime,
		DistanceMeters:   act.Distance,
		ElevationGainM:   act.TotalElevation,
		CaloriesBurned:   int(act.Calories),
		AvgHeartRate:     int(act.AvgHeartRate),
		MapPolyline:      act.Map.SummaryPolyline,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "strava_activity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "workout_type", "duration_seconds", "moving_seconds",
			"distance_meters", "elevation_gain_m", "calories_burned",
			"avg_heart_rate", "map_polyline",
		}),
	}).Create(&workout).Error
}

// refreshTokenIfNeeded swaps the refresh token for a fresh access token
// when the stored one is inside its expiry margin.
func (s *StravaService) refreshTokenIfNeeded(user *models.User) error {
	if user.StravaTokenExpiry != nil && time.Until(*user.StravaTokenExpiry) > 5*time.Minute {
		return nil
	}

	form := url.Values{}
	form.Set("client_id", s.ClientID)
	form.Set("client_secret", s.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", user.StravaRefreshToken)

	resp, err := utils.HTTPClient.PostForm("https://www.strava.com/oauth/token", form)
	if err != nil {
		return fmt.Errorf("strava token refresh: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("strava token refresh: status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("strava token refresh: %w", err)
	}

	expiry := utils.UnixUTC(tok.ExpiresAt)
	user.StravaAccessToken = tok.AccessToken
	user.StravaRefreshToken = tok.RefreshToken
	user.StravaTokenExpiry = &expiry
	return s.DB.Model(user).Updates(map[string]interface{}{
		"strava_access_token":  tok.AccessToken,
		"strava_refresh_token": tok.RefreshToken,
		"strava_token_expiry":  expiry,
	}).Error
}

// SyncUserActivities pulls activities since the user's last sync, upserts
// them, then runs auto-linking once for the batch.
func (s *StravaService) SyncUserActivities(user *models.User) (int, error) {
	if !user.StravaConnected {
		return 0, nil
	}
	if err := s.refreshTokenIfNeeded(user); err != nil {
		return 0, err
	}

	after := int64(0)
	if user.LastStravaSync != nil {
		after = user.LastStravaSync.Unix()
	}

	req, err := http.NewRequest("GET",
		fmt.Sprintf("%s/athlete/activities?after=%d&per_page=100", stravaAPIBase, after), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+user.StravaAccessToken)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("strava activities fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("strava activities fetch: status %d", resp.StatusCode)
	}

	var activities []stravaActivity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return 0, fmt.Errorf("strava activities decode: %w", err)
	}

	synced := 0
	for _, act := range activities {
		if err := upsertActivity(s.DB, user.ID, act); err != nil {
			utils.WithFields(logrus.Fields{"user_id": user.ID, "activity_id": act.ID}).
				Warnf("activity upsert failed: %v", err)
			continue
		}
		synced++
	}

	now := time.Now().UTC()
	s.DB.Model(user).Update("last_strava_sync", now)

	if synced > 0 {
		if err := AutoLinkAndUpdate(s.DB, user.ID); err != nil {
			return synced, err
		}
	}
	return synced, nil
}

// SyncNow handles POST /strava/sync — on-demand pull for the caller.
func (s *StravaService) SyncNow(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", callerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if !user.StravaConnected {
		return c.Status(400).JSON(fiber.Map{"error": "strava is not connected"})
	}

	synced, err := s.SyncUserActivities(&user)
	if err != nil {
		utils.WithFields(logrus.Fields{"user_id": user.ID}).Errorf("strava sync failed: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "strava sync failed"})
	}
	return c.JSON(fiber.Map{"synced": synced})
}

// VerifyWebhook handles GET /strava/webhook — Strava's subscription
// handshake. Echo hub.challenge only when the verify token matches.
func (s *StravaService) VerifyWebhook(c *fiber.Ctx) error {
	if c.Query("hub.mode") != "subscribe" || c.Query("hub.verify_token") != s.VerifyToken {
		return c.Status(403).JSON(fiber.Map{"error": "verification failed"})
	}
	return c.JSON(fiber.Map{"hub.challenge": c.Query("hub.challenge")})
}

// HandleWebhook handles POST /strava/webhook. Always 200: Strava
// retries on anything else and we would rather drop one event than get
// the subscription disabled.
func (s *StravaService) HandleWebhook(c *fiber.Ctx) error {
	var event struct {
		ObjectType string `json:"object_type"`
		ObjectID   int64  `json:"object_id"`
		AspectType string `json:"aspect_type"`
		OwnerID    int64  `json:"owner_id"`
	}
	if err := c.BodyParser(&event); err != nil {
		utils.WithFields(logrus.Fields{}).Warnf("unreadable strava event: %v", err)
		return c.SendStatus(200)
	}
	if event.ObjectType != "activity" {
		return c.SendStatus(200)
	}

	athleteID := strconv.FormatInt(event.OwnerID, 10)
	var user models.User
	if err := s.DB.First(&user, "strava_athlete_id = ?", athleteID).Error; err != nil {
		return c.SendStatus(200)
	}

	switch event.AspectType {
	case "create", "update":
		go func() {
			if _, err := s.SyncUserActivities(&user); err != nil {
				utils.WithFields(logrus.Fields{"user_id": user.ID}).
					Warnf("webhook-triggered sync failed: %v", err)
			}
		}()
	case "delete":
		stravaID := strconv.FormatInt(event.ObjectID, 10)
		var workout models.Workout
		if err := s.DB.First(&workout, "strava_activity_id = ?", stravaID).Error; err == nil {
			s.DB.Delete(&workout)
			if workout.ChallengeID != nil {
				if err := RecalcChallengeProgress(s.DB, *workout.ChallengeID); err != nil {
					utils.WithFields(logrus.Fields{"challenge_id": *workout.ChallengeID}).
						Warnf("recalc after strava delete failed: %v", err)
				}
			}
		}
	}
	return c.SendStatus(200)
}

// Disconnect handles DELETE /strava/connection — clears tokens and
// stops future syncs. Already-synced workouts stay.
func (s *StravaService) Disconnect(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	err := s.DB.Model(&models.User{}).Where("id = ?", callerID).Updates(map[string]interface{}{
		"strava_connected":     false,
		"strava_access_token":  "",
		"strava_refresh_token": "",
		"strava_token_expiry":  nil,
	}).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to disconnect strava"})
	}
	return c.JSON(fiber.Map{"message": "strava disconnected"})
}
