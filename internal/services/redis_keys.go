package services

import "time"

const (
	KeyUser          = "gambleio:user:%s"
	KeyUserIndex     = "gambleio:users"
	KeyProfileSlug   = "gambleio:slug:%s"
	KeySession       = "gambleio:session:%s"
	KeySessionPrefix = "gambleio:session:*"
	KeyAdminLogs     = "gambleio:admin_logs"
	KeyPlinkoTotal   = "gambleio:plinko:total"
	KeyPlinkoSlots   = "gambleio:plinko:landings"

	// Optimistic transaction retries before UpdateUser gives up.
	MaxUpdateRetries = 50
	retryBackoff     = 2 * time.Millisecond
)
