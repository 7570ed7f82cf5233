package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTradeID_Deterministic(t *testing.T) {
	id1 := ComputeTradeID("pool-abc", 1700000000000, "tp1.90_sl0.65_ts0.90_strong1_peak300s_up1.20-600s")
	id2 := ComputeTradeID("pool-abc", 1700000000000, "tp1.90_sl0.65_ts0.90_strong1_peak300s_up1.20-600s")

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestComputeTradeID_DistinctInputs(t *testing.T) {
	base := ComputeTradeID("pool-abc", 1700000000000, "strategy-a")

	assert.NotEqual(t, base, ComputeTradeID("pool-xyz", 1700000000000, "strategy-a"))
	assert.NotEqual(t, base, ComputeTradeID("pool-abc", 1700000000001, "strategy-a"))
	assert.NotEqual(t, base, ComputeTradeID("pool-abc", 1700000000000, "strategy-b"))
}
