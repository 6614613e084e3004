package models_test

import (
	"math"
	"testing"
	"time"

	"gambleio-server/internal/models"
)

func TestLevelForXP(t *testing.T) {
	cases := map[int64]int{
		-5:    1,
		0:     1,
		999:   1,
		1000:  2,
		2999:  2,
		3000:  3,
		5999:  3,
		6000:  4,
		10000: 5,
	}
	for xp, want := range cases {
		if got := models.LevelForXP(xp); got != want {
			t.Errorf("LevelForXP(%d) = %d, want %d", xp, got, want)
		}
	}

	for n := 1; n < 200; n++ {
		start := models.XPForLevel(n)
		if got := models.LevelForXP(start); got != n {
			t.Errorf("level at xp %d = %d, want %d", start, got, n)
		}
		if n > 1 {
			if step := models.XPForLevel(n+1) - start; step != int64(1000*n) {
				t.Errorf("xp step from %d = %d, want %d", n, step, 1000*n)
			}
		}
	}
}

func TestLevelForXPStaysBounded(t *testing.T) {
	done := make(chan int, 1)
	go func() {
		done <- models.LevelForXP(math.MaxInt64)
	}()

	select {
	case got := <-done:
		if got != models.MaxLevel {
			t.Errorf("LevelForXP(MaxInt64) = %d, want %d", got, models.MaxLevel)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LevelForXP(MaxInt64) did not return")
	}

	if got := models.XPForLevel(math.MaxInt32); got <= 0 {
		t.Errorf("XPForLevel(MaxInt32) = %d, want positive", got)
	}
	if start := models.XPForLevel(models.MaxLevel); start > models.MaxXP {
		t.Errorf("MaxLevel %d starts at %d, above MaxXP", models.MaxLevel, start)
	}

	u := models.NewUser("big", "", "", 0, time.Now())
	u.SetXP(math.MaxInt64)
	if u.XP != models.MaxXP || u.Level != models.MaxLevel {
		t.Errorf("SetXP(MaxInt64) stored xp=%d level=%d", u.XP, u.Level)
	}
}

func TestParseBetKey(t *testing.T) {
	valid := map[string]float64{
		"0": 36, "17": 36, "36": 36,
		"1-12": 3, "13-24": 3, "25-36": 3,
		"red": 2, "black": 2, "odd": 2, "even": 2, "1-18": 2, "19-36": 2,
	}
	for key, mult := range valid {
		info, ok := models.ParseBetKey(key)
		if !ok {
			t.Errorf("ParseBetKey(%q) rejected", key)
			continue
		}
		if info.Multiplier != mult {
			t.Errorf("ParseBetKey(%q) multiplier = %v, want %v", key, info.Multiplier, mult)
		}
	}

	for _, key := range []string{"", "37", "-1", "07", "green", "1-36", "RED"} {
		if _, ok := models.ParseBetKey(key); ok {
			t.Errorf("ParseBetKey(%q) accepted", key)
		}
	}
}

func TestBetCoverage(t *testing.T) {
	red, _ := models.ParseBetKey("red")
	black, _ := models.ParseBetKey("black")
	even, _ := models.ParseBetKey("even")
	odd, _ := models.ParseBetKey("odd")
	seven, _ := models.ParseBetKey("7")

	if !red.Covers(7) || black.Covers(7) {
		t.Error("7 should be red")
	}
	if red.Covers(0) || black.Covers(0) || even.Covers(0) || odd.Covers(0) {
		t.Error("0 must lose every outside bet")
	}
	if !seven.Covers(7) || seven.Covers(8) {
		t.Error("straight 7 coverage wrong")
	}

	reds := 0
	for n := 1; n <= 36; n++ {
		if models.IsRed(n) {
			reds++
		}
	}
	if reds != 18 {
		t.Errorf("expected 18 red numbers, got %d", reds)
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !models.RoleOwner.CanAssignRole(models.RoleAdmin, models.RoleOwner) {
		t.Error("owner should assign any role")
	}
	if models.RoleAdmin.CanAssignRole(models.RoleMember, models.RoleOwner) {
		t.Error("admin must not assign owner")
	}
	if models.RoleAdmin.CanModify(models.RoleAdmin) {
		t.Error("admin must not modify another admin")
	}
	if !models.RoleMod.CanAssignRole(models.RoleNone, models.RoleMod) {
		t.Error("mod should promote members to mod")
	}
	if models.RoleMod.CanAssignRole(models.RoleMember, models.RoleAdmin) {
		t.Error("mod must not assign admin")
	}
	if models.RoleMod.CanAdjustEconomy() || !models.RoleAdmin.CanAdjustEconomy() {
		t.Error("economy adjustment is admin and owner only")
	}
	if models.RoleMember.CanAccessAdmin() || models.RoleNone.CanMute(models.RoleNone) {
		t.Error("members have no admin capabilities")
	}
}

func TestNewUserDefaults(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	u := models.NewUser("  Alice@Example.com ", "", "hash", models.DefaultStartingBalance, now)

	if u.Username != "alice@example.com" {
		t.Errorf("username not normalized: %q", u.Username)
	}
	if u.DisplayName != "Alice@Example.com" {
		t.Errorf("display name = %q", u.DisplayName)
	}
	if u.ProfileSlug == "" || u.ProfileSlug == u.Username {
		t.Errorf("profile slug must be independent of username, got %q", u.ProfileSlug)
	}
	if u.Balance != 10000 || u.Level != 1 || u.XP != 0 {
		t.Errorf("unexpected economy defaults: %+v", u)
	}
	if u.PlinkoRiskLevel != models.RiskLow {
		t.Errorf("risk level = %q", u.PlinkoRiskLevel)
	}
	if u.AnalyticsStartedAt != now.UnixMilli() {
		t.Errorf("analytics start = %d", u.AnalyticsStartedAt)
	}

	stats := u.Stats()
	if stats.Role != nil {
		t.Error("new user should have no role")
	}

	u.SetRole(models.RoleOwner)
	if !u.IsOwner || !u.IsAdmin {
		t.Error("owner flags not derived")
	}
}
