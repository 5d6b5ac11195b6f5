package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID, used as the primary key for
// all ledger rows so insertion order roughly matches key order.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
