package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"enbapp/internal/enbapi"
)

type updateMembershipParams struct {
	WalletAddress   string `json:"walletAddress" binding:"required"`
	MembershipLevel string `json:"membershipLevel" binding:"required"`
}

// UpdateMembership records the level on-chain through the relayer, then
// persists it. Any of the three levels may be requested directly, there
// is no ordering check.
func UpdateMembership(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params updateMembershipParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress and membershipLevel are required"})
		return
	}
	if !enbapi.IsValidMembership(params.MembershipLevel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership level"})
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
	txHash, err := app.Relayer.SubmitMembershipUpgrade(account.WalletAddress, enbapi.MembershipIndex(params.MembershipLevel))
	if err != nil {
		fmt.Println("[[Relay]] upgradeMembership failed:", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "relayer call failed"})
		return
	}
	if err := settleMembership(app, account.Id, params.MembershipLevel, txHash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_address":   account.WalletAddress,
		"membership_level": params.MembershipLevel,
		"txHash":           txHash,
	})
}

// settleMembership persists the confirmed level and its tx hash
func settleMembership(app *enbapi.App, accountId uint, level string, txHash string) error {
	tx := app.Db.Begin()
	defer func() {
		tx.Rollback()
	}()
	var account enbapi.Account
	res := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", accountId).First(&account)
	if res.RowsAffected != 1 {
		return errors.New("account not found")
	}
	account.MembershipLevel = level
	account.MembershipTxHash = txHash
	res = tx.Save(&account)
	if res.Error != nil {
		return res.Error
	}
	tx.Commit()
	return nil
}
