package enbapi

import (
	"time"

	"gorm.io/gorm"
)

// InvitationUsage is a Structure designed to store invitation consumption
// events. Append-only, one row per successful activation, never mutated.
type InvitationUsage struct {
	CreatedAt      time.Time `json:"created_at"`
	Id             uint      `json:"id" gorm:"primaryKey;autoIncrement:true"`
	InvitationCode string    `json:"invitation_code" gorm:"index;not null"`
	UsedBy         string    `json:"used_by" gorm:"index;not null"` // wallet that got activated
	InviterWallet  string    `json:"inviter_wallet"`
	UsedAt         time.Time `json:"used_at"`
}

type InvitationUsageData struct {
	InvitationCode string            `json:"invitation_code"`
	InviterWallet  string            `json:"inviter_wallet"`
	MaxUses        uint              `json:"max_uses"`
	CurrentUses    uint              `json:"current_uses"`
	UsesLeft       uint              `json:"uses_left"`
	Usages         []InvitationUsage `json:"usages"`
}

func GetInvitationStats(db *gorm.DB, inviter Account) (stats InvitationUsageData) {
	stats.InvitationCode = inviter.InvitationCode
	stats.InviterWallet = inviter.WalletAddress
	stats.MaxUses = inviter.MaxInvitationUses
	stats.CurrentUses = inviter.CurrentInvitationUses
	if inviter.MaxInvitationUses > inviter.CurrentInvitationUses {
		stats.UsesLeft = inviter.MaxInvitationUses - inviter.CurrentInvitationUses
	}
	stats.Usages = []InvitationUsage{}
	db.Where("invitation_code = ?", inviter.InvitationCode).
		Order("used_at DESC").
		Find(&stats.Usages)
	return stats
}
