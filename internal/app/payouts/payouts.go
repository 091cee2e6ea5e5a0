package payouts

import (
	"sort"

	"github.com/shopspring/decimal"

	"marketplace/internal/domain"
)

// DefaultCommissionRate is the platform's cut of each vendor's gross.
var DefaultCommissionRate = decimal.NewFromFloat(0.01)

type VendorShare struct {
	VendorID   string
	Gross      int64
	Commission int64
	Net        int64
}

// Compute groups order lines by vendor and splits each vendor's gross into
// commission and net. Amounts are minor currency units; commission is rounded
// with banker's rounding and net is the exact remainder, so gross always
// equals commission plus net.
func Compute(lines []domain.OrderLine, rate decimal.Decimal) []VendorShare {
	grossByVendor := make(map[string]int64)
	for _, line := range lines {
		grossByVendor[line.VendorID] += line.Subtotal()
	}

	shares := make([]VendorShare, 0, len(grossByVendor))
	for vendorID, gross := range grossByVendor {
		commission := decimal.NewFromInt(gross).Mul(rate).RoundBank(0).IntPart()
		shares = append(shares, VendorShare{
			VendorID:   vendorID,
			Gross:      gross,
			Commission: commission,
			Net:        gross - commission,
		})
	}

	sort.Slice(shares, func(i, j int) bool { return shares[i].VendorID < shares[j].VendorID })
	return shares
}
