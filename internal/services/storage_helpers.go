package services

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"versions/relay/internal/constants"
)

const bytesPerMiB = 1024 * 1024

// storageCostPerMiB is the price of one MiB in USDFC base units.
const storageCostPerMiB = 1000

// CalculateStorageCost returns the storage price of size bytes in USDFC
// base units, rounded up.
func CalculateStorageCost(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size*storageCostPerMiB + bytesPerMiB - 1) / bytesPerMiB
}

func FormatStorageCost(cost string) string {
	if cost == "" {
		return "Free"
	}
	return cost
}

// FormatPieceCID shortens long CIDs to their first and last 8 characters.
func FormatPieceCID(cid string) string {
	if cid == "" {
		return "Unknown"
	}
	if len(cid) > 20 {
		return cid[:8] + "..." + cid[len(cid)-8:]
	}
	return cid
}

func IsValidPieceCID(cid string) bool {
	return strings.HasPrefix(cid, "bafk")
}

// maxTransferUSD caps a single payment or withdrawal.
const maxTransferUSD = 1_000_000

// toBaseUnits converts a USD amount to USDFC base units, truncating below
// one base unit. The amount is read as the decimal it prints as, so 0.3
// is 300000 units and not 299999. Non-finite amounts, amounts over
// maxTransferUSD and amounts worth less than one base unit are rejected.
func toBaseUnits(usd float64) (*big.Int, error) {
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return nil, errors.New("amount must be a finite number")
	}
	if usd > maxTransferUSD {
		return nil, fmt.Errorf("amount exceeds the %d USD limit per transfer", maxTransferUSD)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(usd, 'f', -1, 64))
	if !ok {
		return nil, fmt.Errorf("invalid amount %v", usd)
	}
	r.Mul(r, new(big.Rat).SetInt64(constants.USDFCDecimals))
	units := new(big.Int).Quo(r.Num(), r.Denom())
	if units.Sign() <= 0 {
		return nil, errors.New("amount must be at least 0.000001 USD")
	}
	return units, nil
}

// formatUSD renders base units as dollars with two decimals.
func formatUSD(amount *big.Int) string {
	return new(big.Rat).SetFrac(amount, big.NewInt(constants.USDFCDecimals)).FloatString(2)
}

// lastN returns the trailing n characters of s, or s itself when shorter.
func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
