package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enbapp/internal/enbapi"
)

func LeaderboardBalance(c *gin.Context)  { leaderboard(c, enbapi.MetricBalance) }
func LeaderboardEarnings(c *gin.Context) { leaderboard(c, enbapi.MetricEarnings) }
func LeaderboardStreaks(c *gin.Context)  { leaderboard(c, enbapi.MetricStreaks) }

// leaderboard serves from the worker's Redis snapshot when it covers the
// requested size, otherwise falls back to a live query.
func leaderboard(c *gin.Context, metric string) {
	app := c.MustGet("app").(*enbapi.App)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > enbapi.CurrentAppConfig.Settings.Limits.LeaderboardMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if cached := enbapi.CachedLeaderboard(app.Rdb, metric); len(cached) >= limit {
		c.JSON(http.StatusOK, gin.H{
			"metric":  metric,
			"results": cached[:limit],
		})
		return
	}
	entries, err := enbapi.BuildLeaderboard(app.Db, metric, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metric":  metric,
		"results": entries,
	})
}

// GetUserRankings reports the account's rank on all three metrics: the
// count of activated accounts strictly greater on the metric, plus one.
func GetUserRankings(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	address := c.Param("walletAddress")

	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", address).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if !account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is not activated"})
		return
	}
	var higherBalance, higherEarnings, higherStreaks int64
	res = app.Db.Model(&enbapi.Account{}).
		Where("is_activated = ? AND enb_balance > ?", true, account.EnbBalance).
		Count(&higherBalance)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	res = app.Db.Model(&enbapi.Account{}).
		Where("is_activated = ? AND total_earned > ?", true, account.TotalEarned).
		Count(&higherEarnings)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	res = app.Db.Model(&enbapi.Account{}).
		Where("is_activated = ? AND consecutive_days > ?", true, account.ConsecutiveDays).
		Count(&higherStreaks)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_address": account.WalletAddress,
		"balance_rank":   higherBalance + 1,
		"earnings_rank":  higherEarnings + 1,
		"streak_rank":    higherStreaks + 1,
	})
}
