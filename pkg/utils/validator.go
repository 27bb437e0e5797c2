package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const maxClaimIDLength = 64

var (
	claimIDRegex     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-/]*$`)
	controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// ValidateClaimID validates an agency claim reference such as CLM-2025-0001
func ValidateClaimID(claimID string) error {
	if len(claimID) > maxClaimIDLength {
		return fmt.Errorf("claimId must be at most %d characters", maxClaimIDLength)
	}
	if !claimIDRegex.MatchString(claimID) {
		return fmt.Errorf("claimId %q may only contain letters, digits, '-', '_' and '/'", claimID)
	}
	return nil
}

// ValidateAmount validates a claim payout amount
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("claimAmount must be a finite number")
	}
	if amount <= 0 {
		return fmt.Errorf("claimAmount must be greater than zero")
	}
	return nil
}

// SanitizeString removes control characters, keeping tabs and newlines
func SanitizeString(s string) string {
	return strings.TrimSpace(controlCharRegex.ReplaceAllString(s, ""))
}
