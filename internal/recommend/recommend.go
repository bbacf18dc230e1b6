package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

const (
	defaultLimit         = 6
	preferenceWindowMo   = 12
	fallbackWindowMonths = 6
	maxPreferredTowns    = 3
)

// Candidates is the read access the service needs. *database.Database
// implements it.
type Candidates interface {
	RecommendCandidates(towns []string, excludeIDs []int64, fromMonth string, limit int) ([]models.Transaction, error)
}

// Preferences is the explicit request payload: the towns the caller cares
// about and the transactions they have already seen.
type Preferences struct {
	Towns     []string `json:"towns"`
	ViewedIDs []int64  `json:"viewedTransactionIds"`
	Limit     int      `json:"limit"`
}

// Result carries recommendations plus the reasoning shown to the user.
type Result struct {
	Recommendations []models.Transaction `json:"recommendations"`
	Reasoning       string               `json:"reasoning"`
	UsedPreferences bool                 `json:"used_preferences"`
}

type Service struct {
	store  Candidates
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(store Candidates, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Recommend returns recent transactions matching the preferences, falling
// back to popular recent transactions when no preferences are given or the
// preference query comes back empty.
func (s *Service) Recommend(prefs Preferences) (Result, error) {
	limit := prefs.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	towns := normalizeTowns(prefs.Towns)
	hasPrefs := len(towns) > 0 || len(prefs.ViewedIDs) > 0

	if hasPrefs {
		fromMonth := s.monthsAgo(preferenceWindowMo)
		txs, err := s.store.RecommendCandidates(towns, prefs.ViewedIDs, fromMonth, limit)
		if err != nil {
			return Result{}, fmt.Errorf("preference candidates: %w", err)
		}
		if len(txs) > 0 {
			return Result{
				Recommendations: txs,
				Reasoning:       reasoning(towns, prefs.ViewedIDs),
				UsedPreferences: true,
			}, nil
		}
		s.logger.WithField("towns", towns).Debug("No preference matches, using fallback")
	}

	fromMonth := s.monthsAgo(fallbackWindowMonths)
	txs, err := s.store.RecommendCandidates(nil, nil, fromMonth, limit)
	if err != nil {
		return Result{}, fmt.Errorf("fallback candidates: %w", err)
	}
	return Result{
		Recommendations: txs,
		Reasoning:       "Popular recent properties",
		UsedPreferences: false,
	}, nil
}

func (s *Service) monthsAgo(months int) string {
	return s.now().AddDate(0, -months, 0).Format("2006-01")
}

// normalizeTowns uppercases, dedupes and caps the preferred town list.
func normalizeTowns(towns []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range towns {
		name := strings.ToUpper(strings.TrimSpace(t))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == maxPreferredTowns {
			break
		}
	}
	return out
}

func reasoning(towns []string, viewedIDs []int64) string {
	var parts []string
	if len(towns) > 0 {
		n := len(towns)
		if n > 2 {
			n = 2
		}
		parts = append(parts, "properties in "+strings.Join(towns[:n], " and "))
	}
	if len(viewedIDs) > 0 {
		parts = append(parts, "similar to properties you viewed")
	}
	if len(parts) == 0 {
		return "Recent market listings"
	}
	return "Based on your interest in " + strings.Join(parts, ", ")
}
