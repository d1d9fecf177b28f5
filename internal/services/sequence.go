package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Scoped number tags. Token and invoice numbers share the same shape:
// O<outlet>-<tag>-NNN, zero padded, counting from 001 per outlet.
const (
	tokenTag   = "TKN"
	invoiceTag = "INV"
)

// nextScopedNumber derives the next number in an outlet's sequence from the
// most recently issued one. An empty or unparsable latest value restarts
// the sequence at 001. Uniqueness is ultimately enforced by the database
// index; this only picks the candidate.
func nextScopedNumber(latest string, outletID int64, tag string) string {
	seq := 1
	if latest != "" {
		parts := strings.Split(latest, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil && n > 0 {
			seq = n + 1
		}
	}
	return fmt.Sprintf("O%d-%s-%03d", outletID, tag, seq)
}
