package blockchain

import (
	"fmt"
	"math"
	"strings"
)

const (
	DropsPerXRP = 1_000_000
	// maxDrops is the total XRP supply in drops.
	maxDrops = 100_000_000_000 * DropsPerXRP

	// AddressPrefix starts every classic XRPL account address.
	AddressPrefix = "r"
)

// XRPToDrops converts a whole-unit amount to drops, rounding to the nearest drop.
func XRPToDrops(xrp float64) (int64, error) {
	if math.IsNaN(xrp) || math.IsInf(xrp, 0) || xrp < 0 {
		return 0, fmt.Errorf("invalid XRP amount %v", xrp)
	}
	drops := math.Round(xrp * DropsPerXRP)
	if drops > maxDrops {
		return 0, fmt.Errorf("XRP amount %v exceeds total supply", xrp)
	}
	return int64(drops), nil
}

func DropsToXRP(drops int64) float64 {
	return float64(drops) / DropsPerXRP
}

// HasAddressPrefix is the cheap shape check wallets apply before anything else.
func HasAddressPrefix(address string) bool {
	return strings.HasPrefix(strings.TrimSpace(address), AddressPrefix)
}
