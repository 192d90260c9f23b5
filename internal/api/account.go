package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"enbapp/internal/enbapi"
	"enbapp/internal/evm"
)

type createAccountParams struct {
	WalletAddress   string `json:"walletAddress" binding:"required"`
	TransactionHash string `json:"transactionHash" binding:"required"`
}

type createDefaultUserParams struct {
	WalletAddress  string `json:"walletAddress" binding:"required"`
	InvitationCode string `json:"invitationCode" binding:"required"`
	MaxUses        uint   `json:"maxUses"`
}

type activateAccountParams struct {
	WalletAddress  string `json:"walletAddress" binding:"required"`
	InvitationCode string `json:"invitationCode" binding:"required"`
}

// CreateAccount registers a wallet with a fresh invitation code.
// Re-creation is rejected, an account row is never overwritten.
func CreateAccount(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params createAccountParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress and transactionHash are required"})
		return
	}
	if !evm.IsValidAddress(params.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}
	var double enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.WalletAddress).First(&double)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account already exists"})
		return
	}
	code, err := enbapi.GenerateInvitationCode(app.Db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	account := enbapi.Account{
		WalletAddress:     params.WalletAddress,
		CreationTxHash:    params.TransactionHash,
		MembershipLevel:   enbapi.MembershipBased,
		InvitationCode:    code,
		MaxInvitationUses: enbapi.DefaultMaxInvitationUses,
	}
	res = app.Db.Create(&account)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	c.JSON(http.StatusCreated, account.Data())
}

// CreateDefaultUser bootstraps a pre-activated account carrying a chosen
// invitation code, so the first real users have somebody to be invited by.
func CreateDefaultUser(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params createDefaultUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress and invitationCode are required"})
		return
	}
	if !evm.IsValidAddress(params.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}
	var double enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.WalletAddress).First(&double)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account already exists"})
		return
	}
	res = app.Db.Where("invitation_code = ?", params.InvitationCode).First(&double)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation code already in use"})
		return
	}
	maxUses := params.MaxUses
	if maxUses == 0 {
		maxUses = enbapi.DefaultMaxInvitationUses
	}
	now := time.Now()
	account := enbapi.Account{
		WalletAddress:     params.WalletAddress,
		MembershipLevel:   enbapi.MembershipBased,
		InvitationCode:    params.InvitationCode,
		MaxInvitationUses: maxUses,
		IsActivated:       true,
		ActivatedAt:       &now,
	}
	res = app.Db.Create(&account)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	c.JSON(http.StatusCreated, account.Data())
}

// ActivateAccount consumes an invitation code. The precondition ladder is
// checked in order so each failure maps to its own message; the three
// writes (account, inviter counter, usage record) commit together.
func ActivateAccount(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	var params activateAccountParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress and invitationCode are required"})
		return
	}
	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", params.WalletAddress).First(&account)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account already activated"})
		return
	}
	var inviter enbapi.Account
	res = app.Db.Where("invitation_code = ?", params.InvitationCode).First(&inviter)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation code"})
		return
	}
	if !inviter.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inviter account is not activated"})
		return
	}
	if inviter.CurrentInvitationUses >= inviter.MaxInvitationUses {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation code usage limit exceeded"})
		return
	}
	var usageDouble enbapi.InvitationUsage
	res = app.Db.Where(
		"invitation_code = ? AND used_by = ?",
		params.InvitationCode,
		params.WalletAddress,
	).First(&usageDouble)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation code already used by this wallet"})
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
	res = tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", inviter.Id).First(&inviter)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation code"})
		return
	}
	// Re-check under the locks: a parallel activation may have landed
	// between the reads above and here.
	if account.IsActivated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account already activated"})
		return
	}
	if inviter.CurrentInvitationUses >= inviter.MaxInvitationUses {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation code usage limit exceeded"})
		return
	}
	now := time.Now()
	account.IsActivated = true
	account.InvitedBy = inviter.WalletAddress
	account.ActivatedAt = &now
	res = tx.Save(&account)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	inviter.CurrentInvitationUses++
	res = tx.Save(&inviter)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	usage := enbapi.InvitationUsage{
		InvitationCode: params.InvitationCode,
		UsedBy:         account.WalletAddress,
		InviterWallet:  inviter.WalletAddress,
		UsedAt:         now,
	}
	res = tx.Create(&usage)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	tx.Commit()
	c.JSON(http.StatusOK, gin.H{
		"wallet_address": account.WalletAddress,
		"invited_by":     inviter.WalletAddress,
		"uses_left":      inviter.MaxInvitationUses - inviter.CurrentInvitationUses,
	})
}

func GetProfile(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	address := c.Param("walletAddress")

	var account enbapi.Account
	res := app.Db.Where("wallet_address = ?", address).First(&account)
	if res.RowsAffected == 1 {
		c.JSON(http.StatusOK, account.Data())
	} else {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	}
}

// GetUsers lists accounts with optional membership/activation filters
func GetUsers(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}
	q := app.Db.Model(&enbapi.Account{})
	if level := c.Query("membershipLevel"); level != "" {
		if !enbapi.IsValidMembership(level) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership level"})
			return
		}
		q = q.Where("membership_level = ?", level)
	}
	if activated := c.Query("isActivated"); activated != "" {
		val, err := strconv.ParseBool(activated)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isActivated"})
			return
		}
		q = q.Where("is_activated = ?", val)
	}
	var total int64
	if res := q.Count(&total); res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	var accounts []enbapi.Account
	res := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&accounts)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	results := make([]enbapi.AccountData, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, account.Data())
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}
