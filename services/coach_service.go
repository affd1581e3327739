package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CoachService proxies chat to an OpenAI-compatible completions API and
// persists conversations. The model sees a compact summary of the
// user's recent training and open challenges, never raw rows.
type CoachService struct {
	DB      *gorm.DB
	BaseURL string
	APIKey  string
	Model   string
}

func NewCoachService(db *gorm.DB) *CoachService {
	baseURL := os.Getenv("COACH_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("COACH_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &CoachService{
		DB:      db,
		BaseURL: baseURL,
		APIKey:  os.Getenv("COACH_API_KEY"),
		Model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildUserContext summarizes the last two weeks of training plus any
// non-terminal challenges into a system prompt.
func (s *CoachService) buildUserContext(userID string) (string, error) {
	since := time.Now().UTC().AddDate(0, 0, -14)

	var workouts []models.Workout
	if err := s.DB.Where("user_id = ? AND start_time >= ?", userID, since).
		Order("start_time DESC").Limit(30).Find(&workouts).Error; err != nil {
		return "", err
	}

	var challenges []models.Challenge
	if err := s.DB.Where("creator_id = ? AND status IN ?", userID,
		[]models.ChallengeStatus{models.ChallengeInitialized, models.ChallengeActive}).
		Find(&challenges).Error; err != nil {
		return "", err
	}

	var b bytes.Buffer
	b.WriteString("You are a fitness coach for an athlete with money staked on their goals. Be concrete and concise.\n\n")
	b.WriteString(fmt.Sprintf("Workouts in the last 14 days: %d\n", len(workouts)))
	for _, w := range workouts {
		b.WriteString(fmt.Sprintf("- %s %s: %.1f km, %d min\n",
			w.StartTime.Format("Jan 2"), w.Type, w.DistanceMeters/1000, w.DurationSeconds/60))
	}
	if len(challenges) > 0 {
		b.WriteString("\nOpen challenges:\n")
		for _, ch := range challenges {
			b.WriteString(fmt.Sprintf("- %q: %.1f/%.1f %s, deadline %s, status %s\n",
				ch.Title, ch.CurrentProgress, ch.GoalTarget, ch.GoalUnit,
				ch.Deadline.Format("Jan 2"), ch.Status))
		}
	}
	return b.String(), nil
}

func (s *CoachService) complete(messages []chatMessage) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model":    s.Model,
		"messages": messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("coach completion: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coach completion: status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("coach completion decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("coach completion: empty response")
	}
	return out.Choices[0].Message.Content, nil
}

// Chat handles POST /coach/chat. Passing conversation_id continues an
// existing thread; omitting it starts a new one.
func (s *CoachService) Chat(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	if s.APIKey == "" {
		return c.Status(503).JSON(fiber.Map{"error": "coach is not configured"})
	}

	var req struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	var conv models.CoachConversation
	if req.ConversationID != "" {
		err := s.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).First(&conv, "id = ?", req.ConversationID).Error
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "conversation not found"})
		}
		if conv.UserID != callerID {
			return c.Status(403).JSON(fiber.Map{"error": "not your conversation"})
		}
	} else {
		title := req.Message
		if len(title) > 64 {
			title = title[:64]
		}
		conv = models.CoachConversation{ID: uuid.NewString(), UserID: callerID, Title: title}
		if err := s.DB.Create(&conv).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to create conversation"})
		}
	}

	systemPrompt, err := s.buildUserContext(callerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to build context"})
	}

	messages := []chatMessage{{Role: "system", Content: systemPrompt}}
	for _, m := range conv.Messages {
		role := "user"
		if m.Role == models.CoachRoleAssistant {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})

	reply, err := s.complete(messages)
	if err != nil {
		utils.WithFields(logrus.Fields{"user_id": callerID}).Errorf("coach completion failed: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "coach is unavailable"})
	}

	userMsg := models.CoachMessage{
		ID: uuid.NewString(), ConversationID: conv.ID,
		Role: models.CoachRoleUser, Content: req.Message,
	}
	assistantMsg := models.CoachMessage{
		ID: uuid.NewString(), ConversationID: conv.ID,
		Role: models.CoachRoleAssistant, Content: reply,
	}
	if err := s.DB.Create(&userMsg).Error; err == nil {
		if err := s.DB.Create(&assistantMsg).Error; err != nil {
			utils.WithFields(logrus.Fields{"conversation_id": conv.ID}).
				Warnf("failed to persist assistant message: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"conversation_id": conv.ID,
		"reply":           reply,
	})
}

// ListConversations handles GET /coach/conversations.
func (s *CoachService) ListConversations(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var convs []models.CoachConversation
	if err := s.DB.Where("user_id = ?", callerID).
		Order("updated_at DESC").Find(&convs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch conversations"})
	}
	return c.JSON(convs)
}

// GetConversation handles GET /coach/conversations/:id with messages.
func (s *CoachService) GetConversation(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var conv models.CoachConversation
	err := s.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&conv, "id = ?", c.Params("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "conversation not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch conversation"})
	}
	if conv.UserID != callerID {
		return c.Status(403).JSON(fiber.Map{"error": "not your conversation"})
	}
	return c.JSON(conv)
}
