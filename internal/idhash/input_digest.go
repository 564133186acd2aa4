package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"grocery-forecast-lab/internal/domain"
)

// ComputeInputDigest computes an order-independent digest of the sales log and
// holiday calendar. Each record contributes unit|date|quantity, each holiday
// its date; lines are sorted before hashing.
// Returns hex-encoded hash (64 characters).
func ComputeInputDigest(records []*domain.SalesRecord, holidays []domain.Holiday) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, r.UnitID+"|"+r.Date.UTC().Format(domain.DateLayout)+"|"+
			strconv.FormatFloat(r.Quantity, 'g', -1, 64))
	}
	sort.Strings(lines)

	days := make([]string, 0, len(holidays))
	for _, h := range holidays {
		days = append(days, h.Date.UTC().Format(domain.DateLayout))
	}
	sort.Strings(days)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	h.Write([]byte("holidays\n"))
	for _, d := range days {
		h.Write([]byte(d))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
