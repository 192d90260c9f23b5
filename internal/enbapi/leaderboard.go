package enbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	MetricBalance  = "balance"
	MetricEarnings = "earnings"
	MetricStreaks  = "streaks"
)

type LeaderboardEntry struct {
	Rank            uint    `json:"rank"`
	WalletAddress   string  `json:"wallet_address"`
	MembershipLevel string  `json:"membership_level"`
	EnbBalance      float64 `json:"enb_balance"`
	TotalEarned     float64 `json:"total_earned"`
	ConsecutiveDays uint    `json:"consecutive_days"`
}

func metricColumn(metric string) string {
	switch metric {
	case MetricEarnings:
		return "total_earned"
	case MetricStreaks:
		return "consecutive_days"
	}
	return "enb_balance"
}

// BuildLeaderboard returns the top activated accounts ordered by metric
func BuildLeaderboard(db *gorm.DB, metric string, limit int) ([]LeaderboardEntry, error) {
	var accounts []Account
	res := db.Where("is_activated = ?", true).
		Order(metricColumn(metric) + " DESC").
		Limit(limit).
		Find(&accounts)
	if res.Error != nil {
		return nil, res.Error
	}
	entries := make([]LeaderboardEntry, 0, len(accounts))
	for i, account := range accounts {
		entries = append(entries, LeaderboardEntry{
			Rank:            uint(i + 1),
			WalletAddress:   account.WalletAddress,
			MembershipLevel: account.MembershipLevel,
			EnbBalance:      account.EnbBalance,
			TotalEarned:     account.TotalEarned,
			ConsecutiveDays: account.ConsecutiveDays,
		})
	}
	return entries, nil
}

func SnapshotKey(metric string) string {
	return fmt.Sprintf("leaderboard_%s", metric)
}

// CacheLeaderboard stores a snapshot for the API to serve without
// hitting the db on every request. Refreshed by the snapshot worker.
func CacheLeaderboard(rdb *redis.Client, metric string, entries []LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return rdb.Set(context.Background(), SnapshotKey(metric), raw, 10*time.Minute).Err()
}

// CachedLeaderboard returns the last snapshot, or nil on a miss
func CachedLeaderboard(rdb *redis.Client, metric string) (entries []LeaderboardEntry) {
	raw, _ := rdb.Get(context.Background(), SnapshotKey(metric)).Result()
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}
