package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"enbapp/internal/enbapi"
	"enbapp/internal/evm"
)

type dailyClaimParams struct {
	WalletAddress   string `json:"walletAddress" binding:"required"`
	TransactionHash string `json:"transactionHash" binding:"required"`
}

var errAlreadyClaimed = errors.New("already claimed today")

type claimResult struct {
	Reward      float64
	Streak      uint
	Balance     float64
	TotalEarned float64
}

// DailyClaim is the off-chain bookkeeping variant: the claim transaction
// was submitted by the client and its hash is stored for audit. The
// relayer-backed flow lives on /relay/daily-claim.
func DailyClaim(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params dailyClaimParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress and transactionHash are required"})
		return
	}
	if !evm.IsValidAddress(params.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}
	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.WalletAddress).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if !account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is not activated"})
		return
	}
	now := time.Now()
	if account.LastDailyClaimTime != nil && enbapi.SameCalendarDay(*account.LastDailyClaimTime, now) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyClaimed.Error()})
		return
	}
	result, err := settleClaim(app, account.Id, params.TransactionHash, "daily claim")
	if err != nil {
		if errors.Is(err, errAlreadyClaimed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_address":   params.WalletAddress,
		"reward":           result.Reward,
		"enb_balance":      result.Balance,
		"total_earned":     result.TotalEarned,
		"consecutive_days": result.Streak,
		"transaction_hash": params.TransactionHash,
	})
}

// settleClaim applies the streak and reward bookkeeping under a row lock.
// The already-claimed check runs again after the lock is held, so two
// near-simultaneous claims for the same wallet cannot both credit.
func settleClaim(app *enbapi.App, accountId uint, txHash string, message string) (out claimResult, err error) {
	tx := app.Db.Begin()
	defer func() {
		tx.Rollback()
	}()
	var account enbapi.Account
	res := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", accountId).First(&account)
	if res.RowsAffected != 1 {
		return out, errors.New("account not found")
	}
	now := time.Now()
	if account.LastDailyClaimTime != nil && enbapi.SameCalendarDay(*account.LastDailyClaimTime, now) {
		return out, errAlreadyClaimed
	}
	streak := enbapi.NextStreak(account.LastDailyClaimTime, account.ConsecutiveDays, now)
	reward := enbapi.ClaimReward(enbapi.CurrentAppConfig, streak, account.MembershipLevel)
	before := account.EnbBalance
	account.EnbBalance += reward
	account.TotalEarned += reward
	account.ConsecutiveDays = streak
	account.LastDailyClaimTime = &now
	res = tx.Save(&account)
	if res.Error != nil {
		return out, res.Error
	}
	record := enbapi.Transaction{
		WalletAddress: account.WalletAddress,
		Type:          enbapi.TxCredit,
		Amount:        reward,
		BalanceBefore: before,
		BalanceAfter:  account.EnbBalance,
		TxHash:        txHash,
		Message:       message,
	}
	res = tx.Create(&record)
	if res.Error != nil {
		return out, res.Error
	}
	tx.Commit()
	out = claimResult{
		Reward:      reward,
		Streak:      streak,
		Balance:     account.EnbBalance,
		TotalEarned: account.TotalEarned,
	}
	return out, nil
}
