package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

// Service posts market digests to a Telegram chat. Disabled configuration
// makes every send a no-op so callers never need to check.
type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	config  config.Config
	baseURL string
}

func NewService(cfg config.Config, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config:  cfg,
		baseURL: "https://api.telegram.org",
	}
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.config.Telegram.IsEnabled {
		return nil
	}

	if s.config.Telegram.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.Telegram.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.config.Telegram.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.Telegram.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// SendMarketDigest posts the top appreciating towns after a data refresh.
func (s *Service) SendMarketDigest(year string, towns []models.TopAppreciatingTown) error {
	if !s.config.Telegram.IsEnabled {
		return nil
	}
	if len(towns) == 0 {
		s.logger.Debug("No appreciating towns to report, skipping digest")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>HDB Resale Market Digest (%s)</b>\n\n", year)
	fmt.Fprintf(&b, "Top appreciating towns:\n")
	for _, town := range towns {
		fmt.Fprintf(&b, "%d. %s: %+.1f%% (avg $%.0f, %d sales)\n",
			town.GrowthRank, town.TownName, town.YoYGrowthPct, town.AvgPrice, town.Transactions)
	}

	if err := s.SendMessage(b.String()); err != nil {
		s.logger.WithError(err).Error("Failed to send market digest")
		return err
	}
	s.logger.WithField("towns", len(towns)).Info("Sent market digest")
	return nil
}
