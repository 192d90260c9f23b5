package enbapi

import (
	"time"

	"gorm.io/gorm"
)

const (
	MembershipBased      = "Based"
	MembershipSuperBased = "Super Based"
	MembershipLegendary  = "Legendary"
)

const DefaultMaxInvitationUses = 5

// Account keeps everything the platform knows about a wallet: activation
// state, invitation code accounting, ENB balance and the claim streak.
// One row per wallet address.
type Account struct {
	Id                    uint           `json:"id" gorm:"primarykey"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	WalletAddress         string         `gorm:"uniqueIndex;not null" json:"wallet_address"`
	CreationTxHash        string         `json:"creation_tx_hash"`
	MembershipLevel       string         `gorm:"not null;default:Based" json:"membership_level"`
	MembershipTxHash      string         `json:"membership_tx_hash"`
	InvitationCode        string         `gorm:"uniqueIndex;not null" json:"invitation_code"`
	MaxInvitationUses     uint           `gorm:"not null;default:5" json:"max_invitation_uses"`
	CurrentInvitationUses uint           `json:"current_invitation_uses"`
	EnbBalance            float64        `json:"enb_balance"`
	TotalEarned           float64        `json:"total_earned"`
	ConsecutiveDays       uint           `json:"consecutive_days"`
	LastDailyClaimTime    *time.Time     `json:"last_daily_claim_time"`
	IsActivated           bool           `gorm:"index" json:"is_activated"`
	InvitedBy             string         `json:"invited_by"` // inviter wallet address, set at activation
	ActivatedAt           *time.Time     `json:"activated_at"`
}

// AccountData is the profile projection returned by the API
type AccountData struct {
	ID                 uint       `json:"id"`
	WalletAddress      string     `json:"wallet_address"`
	MembershipLevel    string     `json:"membership_level"`
	InvitationCode     string     `json:"invitation_code"`
	InvitationUsesLeft uint       `json:"invitation_uses_left"`
	EnbBalance         float64    `json:"enb_balance"`
	TotalEarned        float64    `json:"total_earned"`
	ConsecutiveDays    uint       `json:"consecutive_days"`
	LastDailyClaimTime *time.Time `json:"last_daily_claim_time"`
	IsActivated        bool       `json:"is_activated"`
	InvitedBy          string     `json:"invited_by"`
	CreatedAt          time.Time  `json:"created_at"`
	ActivatedAt        *time.Time `json:"activated_at"`
}

func (a Account) Data() AccountData {
	usesLeft := uint(0)
	if a.MaxInvitationUses > a.CurrentInvitationUses {
		usesLeft = a.MaxInvitationUses - a.CurrentInvitationUses
	}
	return AccountData{
		ID:                 a.Id,
		WalletAddress:      a.WalletAddress,
		MembershipLevel:    a.MembershipLevel,
		InvitationCode:     a.InvitationCode,
		InvitationUsesLeft: usesLeft,
		EnbBalance:         a.EnbBalance,
		TotalEarned:        a.TotalEarned,
		ConsecutiveDays:    a.ConsecutiveDays,
		LastDailyClaimTime: a.LastDailyClaimTime,
		IsActivated:        a.IsActivated,
		InvitedBy:          a.InvitedBy,
		CreatedAt:          a.CreatedAt,
		ActivatedAt:        a.ActivatedAt,
	}
}

func IsValidMembership(level string) bool {
	switch level {
	case MembershipBased, MembershipSuperBased, MembershipLegendary:
		return true
	}
	return false
}

// MembershipIndex maps a level name to the uint8 the contract expects
func MembershipIndex(level string) uint8 {
	switch level {
	case MembershipSuperBased:
		return 1
	case MembershipLegendary:
		return 2
	}
	return 0
}

// MembershipByIndex is the reverse mapping, used by the relay routes
func MembershipByIndex(idx uint8) (string, bool) {
	switch idx {
	case 0:
		return MembershipBased, true
	case 1:
		return MembershipSuperBased, true
	case 2:
		return MembershipLegendary, true
	}
	return "", false
}
