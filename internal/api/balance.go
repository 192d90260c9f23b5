package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"enbapp/internal/enbapi"
)

type updateBalanceParams struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	Description   string  `json:"description"`
}

// UpdateBalance applies a generic ledger adjustment: the account balance
// and the ledger row with its before/after snapshot commit together.
func UpdateBalance(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params updateBalanceParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress, amount and type are required"})
		return
	}
	if params.Type != enbapi.TxCredit && params.Type != enbapi.TxDebit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be credit or debit"})
		return
	}
	if params.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.WalletAddress).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	tx := app.Db.Begin()
	defer func() {
		tx.Rollback()
	}()
	res = tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", account.Id).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	before := account.EnbBalance
	if params.Type == enbapi.TxDebit {
		if params.Amount > account.EnbBalance {
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
			return
		}
		account.EnbBalance -= params.Amount
	} else {
		account.EnbBalance += params.Amount
	}
	res = tx.Save(&account)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	record := enbapi.Transaction{
		WalletAddress: account.WalletAddress,
		Type:          params.Type,
		Amount:        params.Amount,
		BalanceBefore: before,
		BalanceAfter:  account.EnbBalance,
		Message:       params.Description,
	}
	res = tx.Create(&record)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	tx.Commit()
	c.JSON(http.StatusOK, gin.H{
		"wallet_address": account.WalletAddress,
		"type":           params.Type,
		"amount":         params.Amount,
		"balance_before": before,
		"balance_after":  account.EnbBalance,
	})
}

func GetTransactionsList(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	address := c.Param("walletAddress")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > enbapi.CurrentAppConfig.Settings.Limits.TransactionsMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	var transactions []enbapi.Transaction
	res := app.Db.Where("wallet_address = ?", address).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(transactions),
		"results": transactions,
	})
}
