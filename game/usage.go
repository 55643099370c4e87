package game

import (
	"time"

	"mathking/models"
)

// DefaultDailyLimit is the daily play quota.
const DefaultDailyLimit = 30 * time.Minute

func usageDate(now time.Time) string {
	return now.Format(time.DateOnly)
}

// resetIfNewDay restarts the usage window when the stored date is not today.
func resetIfNewDay(u *models.User, now time.Time) bool {
	today := usageDate(now)
	if u.DailyUsage.Date == today {
		return false
	}
	u.DailyUsage = models.DailyUsage{Date: today, LoginTime: now}
	return true
}

// Login opens a session: a new day resets the counter, otherwise only the
// login timestamp moves.
func Login(u *models.User, now time.Time) {
	if !resetIfNewDay(u, now) {
		u.DailyUsage.LoginTime = now
	}
}

// SyncUsage adds the whole seconds elapsed since the last login/sync to the
// day's total and restarts the clock.
func SyncUsage(u *models.User, now time.Time) {
	resetIfNewDay(u, now)

	elapsed := int(now.Sub(u.DailyUsage.LoginTime) / time.Second)
	if elapsed > 0 {
		u.DailyUsage.Duration += elapsed
	}
	u.DailyUsage.LoginTime = now
}

// Remaining is the unused part of the daily quota, never negative.
func Remaining(u *models.User, limit time.Duration) time.Duration {
	left := limit - time.Duration(u.DailyUsage.Duration)*time.Second
	if left < 0 {
		return 0
	}
	return left
}
