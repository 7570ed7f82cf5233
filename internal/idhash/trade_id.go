package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(pool_id|entry_time_ms|strategy_id)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(poolID string, entryTimeMs int64, strategyID string) string {
	data := fmt.Sprintf("%s|%d|%s", poolID, entryTimeMs, strategyID)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
