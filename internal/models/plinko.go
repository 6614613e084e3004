package models

// PlinkoSlots is the number of landing buckets at the bottom of the board.
const PlinkoSlots = 19

type PlinkoStats struct {
	TotalBalls int64   `json:"totalBalls"`
	Landings   []int64 `json:"landings"`
}

func NewPlinkoStats() PlinkoStats {
	return PlinkoStats{Landings: make([]int64, PlinkoSlots)}
}
