package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// XPPerLevelStep is the xp needed to go from level 1 to 2; each further level
// costs one more step than the last.
const XPPerLevelStep = 1000

// MaxXP bounds stored xp so the level curve stays inside int64.
const MaxXP int64 = 1_000_000_000_000_000

// MaxLevel is the level reached at MaxXP.
var MaxLevel = LevelForXP(MaxXP)

// LevelForXP inverts the triangular curve where level n starts at 500*n*(n-1) xp.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	if xp > MaxXP {
		xp = MaxXP
	}
	level := int(math.Floor((1 + math.Sqrt(1+4*float64(xp)/500)) / 2))
	// Correct float drift at exact thresholds.
	for level > 1 && XPForLevel(level) > xp {
		level--
	}
	for XPForLevel(level+1) <= xp {
		level++
	}
	if level < 1 {
		return 1
	}
	return level
}

// maxCurveLevel keeps 500*n*(n-1) below the int64 limit.
const maxCurveLevel = 100_000_000

// XPForLevel is the cumulative xp at which level n begins.
func XPForLevel(n int) int64 {
	if n <= 1 {
		return 0
	}
	if n > maxCurveLevel {
		n = maxCurveLevel
	}
	return int64(XPPerLevelStep/2) * int64(n) * int64(n-1)
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func GenerateProfileSlug() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func GenerateSessionID() string {
	return uuid.New().String()
}

func GenerateMessageID() string {
	return fmt.Sprintf("msg_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateLogID() string {
	return fmt.Sprintf("log_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}
