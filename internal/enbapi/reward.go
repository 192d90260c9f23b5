package enbapi

import (
	"math"
	"time"
	_ "time/tzdata"
)

// FloorAmount rounds x down to prec decimals
func FloorAmount(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Floor(x*pow) / pow
}

func MembershipMultiplier(config *AppConfig, level string) float64 {
	switch level {
	case MembershipSuperBased:
		return config.Settings.Reward.SuperBasedRate
	case MembershipLegendary:
		return config.Settings.Reward.LegendaryRate
	}
	return config.Settings.Reward.BasedRate
}

// SameCalendarDay compares by local calendar date, not by a rolling 24h window
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func isYesterday(prev, now time.Time) bool {
	return SameCalendarDay(prev, now.AddDate(0, 0, -1))
}

// NextStreak returns the streak for a claim happening at now: previous claim
// exactly yesterday continues the streak, anything else resets it to 1.
func NextStreak(last *time.Time, current uint, now time.Time) uint {
	if last == nil {
		return 1
	}
	if isYesterday(*last, now) {
		return current + 1
	}
	return 1
}

// ClaimReward computes the payout for a claim day: base times the streak
// (capped), scaled by the membership rate, floored to a whole token.
func ClaimReward(config *AppConfig, streak uint, level string) float64 {
	effective := streak
	if limit := config.Settings.Reward.StreakCap; effective > limit {
		effective = limit
	}
	reward := config.Settings.Reward.Base * float64(effective) * MembershipMultiplier(config, level)
	return FloorAmount(reward, 0)
}
