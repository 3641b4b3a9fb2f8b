package models

import "time"

// XPTransaction is the append-only reward audit record. Its document ID
// equals the MissionProgress ID, so its existence is the single source of
// truth that a reward was already granted.
type XPTransaction struct {
	ProgressID  string    `json:"progressId"`
	MissionID   string    `json:"missionId"`
	Points      int       `json:"points"`
	LevelBefore int       `json:"levelBefore"`
	LevelAfter  int       `json:"levelAfter"`
	XPBefore    int       `json:"xpBefore"`
	XPAfter     int       `json:"xpAfter"`
	CreatedAt   time.Time `json:"createdAt"`
}
