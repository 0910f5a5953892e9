package models

// PlayerStats is the game-economy document for one user.
type PlayerStats struct {
	User      string `json:"user"`
	Coins     int64  `json:"coins"`
	XP        int64  `json:"xp"`
	Level     int    `json:"level"`
	UpdatedTS int64  `json:"updated_ts"`
}
