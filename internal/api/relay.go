package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enbapp/internal/enbapi"
	"enbapp/internal/evm"
)

type relayClaimParams struct {
	User string `json:"user" binding:"required"`
}

type relayUpgradeParams struct {
	User        string `json:"user" binding:"required"`
	TargetLevel *uint8 `json:"targetLevel" binding:"required"`
}

// RelayDailyClaim submits the claim transaction through the relayer
// wallet, so the user pays no gas. Bookkeeping only runs once the
// relayer returns a transaction hash.
func RelayDailyClaim(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params relayClaimParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "user is required"})
		return
	}
	if !evm.IsValidAddress(params.User) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid wallet address"})
		return
	}
	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.User).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "account not found"})
		return
	}
	if !account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "account is not activated"})
		return
	}
	now := time.Now()
	if account.LastDailyClaimTime != nil && enbapi.SameCalendarDay(*account.LastDailyClaimTime, now) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errAlreadyClaimed.Error()})
		return
	}
	txHash, err := app.Relayer.SubmitDailyClaim(account.WalletAddress)
	if err != nil {
		fmt.Println("[[Relay]] dailyClaim failed:", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "relayer call failed"})
		return
	}
	result, err := settleClaim(app, account.Id, txHash, "daily claim (relayed)")
	if err != nil {
		if errors.Is(err, errAlreadyClaimed) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	notification := fmt.Sprintf(
		"Relayed daily claim\nWallet: %s\nReward: %.2f ENB\nStreak: %d\nTx: %s",
		account.WalletAddress, result.Reward, result.Streak, txHash,
	)
	if err := enbapi.SendTelegramMessage(enbapi.EscapeMarkdownV2(notification), "finance"); err != nil {
		fmt.Println("Failed to send Telegram message:", err.Error())
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"txHash":           txHash,
		"reward":           result.Reward,
		"enb_balance":      result.Balance,
		"consecutive_days": result.Streak,
	})
}

// RelayUpgradeMembership submits an upgradeMembership transaction through
// the relayer wallet. The contract only knows the paid levels, so the
// target has to be 1 (Super Based) or 2 (Legendary).
func RelayUpgradeMembership(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params relayUpgradeParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "user and targetLevel are required"})
		return
	}
	if !evm.IsValidAddress(params.User) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid wallet address"})
		return
	}
	level, ok := enbapi.MembershipByIndex(*params.TargetLevel)
	if !ok || *params.TargetLevel == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "targetLevel must be 1 or 2"})
		return
	}
	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.User).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "account not found"})
		return
	}
	if !account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "account is not activated"})
		return
	}
	txHash, err := app.Relayer.SubmitMembershipUpgrade(account.WalletAddress, *params.TargetLevel)
	if err != nil {
		fmt.Println("[[Relay]] upgradeMembership failed:", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "relayer call failed"})
		return
	}
	if err := settleMembership(app, account.Id, level, txHash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	notification := fmt.Sprintf(
		"Relayed membership upgrade\nWallet: %s\nLevel: %s\nTx: %s",
		account.WalletAddress, level, txHash,
	)
	if err := enbapi.SendTelegramMessage(enbapi.EscapeMarkdownV2(notification), "finance"); err != nil {
		fmt.Println("Failed to send Telegram message:", err.Error())
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"txHash":           txHash,
		"membership_level": level,
	})
}
