// Package player tracks per-user game economy counters.
package player

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/models"
	"burrow/pkg/store"
)

var now = time.Now

// xpPerLevel is the flat experience cost of each level.
const xpPerLevel = 1000

// GetStats returns the user's stats document, or a zeroed one when the
// user has never earned anything.
func GetStats(user string) (models.PlayerStats, error) {
	b, err := store.Get(store.StatsKey(user))
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return models.PlayerStats{User: user}, nil
		}
		return models.PlayerStats{}, err
	}
	var s models.PlayerStats
	if err := json.Unmarshal(b, &s); err != nil {
		return models.PlayerStats{}, apperr.Wrap(apperr.CodeValidation, "malformed stats document", err)
	}
	return s, nil
}

// Grant adds coins and experience. Level is derived from lifetime
// experience, never stored independently. Amounts must be non-negative.
func Grant(user string, coins, xp int64) (models.PlayerStats, error) {
	if coins < 0 || xp < 0 {
		return models.PlayerStats{}, apperr.Validation("grant amounts must be non-negative")
	}
	if coins == 0 && xp == 0 {
		return models.PlayerStats{}, apperr.Validation("grant must change something")
	}
	return mutate(user, func(s *models.PlayerStats) error {
		s.Coins += coins
		s.XP += xp
		s.Level = int(s.XP / xpPerLevel)
		return nil
	})
}

// Spend deducts coins. Spending more than the balance fails with
// Conflict and leaves the document untouched.
func Spend(user string, coins int64) (models.PlayerStats, error) {
	if coins <= 0 {
		return models.PlayerStats{}, apperr.Validation("spend amount must be positive")
	}
	return mutate(user, func(s *models.PlayerStats) error {
		if s.Coins < coins {
			return apperr.Conflict("insufficient coins")
		}
		s.Coins -= coins
		return nil
	})
}

// mutate serializes the read-modify-write so concurrent grants and
// spends never lose updates.
func mutate(user string, fn func(*models.PlayerStats) error) (models.PlayerStats, error) {
	var out models.PlayerStats
	err := store.Update(store.StatsKey(user), func(cur []byte, found bool) ([]byte, error) {
		s := models.PlayerStats{User: user}
		if found {
			if err := json.Unmarshal(cur, &s); err != nil {
				return nil, apperr.Wrap(apperr.CodeValidation, "malformed stats document", err)
			}
		}
		if err := fn(&s); err != nil {
			return nil, err
		}
		s.UpdatedTS = now().UTC().UnixNano()
		out = s
		return json.Marshal(s)
	})
	if err != nil {
		return models.PlayerStats{}, err
	}
	logger.Log.Debug("stats_updated",
		zap.String("user", user), zap.Int64("coins", out.Coins), zap.Int64("xp", out.XP))
	return out, nil
}
