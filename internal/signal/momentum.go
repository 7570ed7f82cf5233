package signal

import "solana-pool-lab/internal/domain"

// momentumScore counts how many of the short-window momentum metrics exceed
// their configured thresholds at this snapshot. Missing metrics contribute
// nothing to the score.
func momentumScore(s *domain.Snapshot, p domain.MomentumParams) int {
	score := 0
	if s.MarketCapChange5s != nil && *s.MarketCapChange5s > p.MCChangeThreshold {
		score++
	}
	if s.HolderDelta30s != nil && float64(*s.HolderDelta30s) > p.HolderChangeThreshold {
		score++
	}
	if s.BuyVolume5s != nil && *s.BuyVolume5s > p.BuyVolumeThreshold {
		score++
	}
	if s.NetVolume5s != nil && *s.NetVolume5s > p.NetVolumeThreshold {
		score++
	}
	return score
}

// momentumStrong reports whether enough momentum metrics are above their
// thresholds to justify holding past the take-profit target.
func momentumStrong(s *domain.Snapshot, p domain.MomentumParams) bool {
	return momentumScore(s, p) >= p.RequiredStrongCount
}
