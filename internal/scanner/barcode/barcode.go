// Package barcode validates and normalizes scanned retail barcodes.
//
// Accepted codes are 8–14 digits after stripping non-digit characters,
// covering the common 1-D retail symbologies (EAN-8, UPC-A, EAN-13, GTIN-14).
// Lengths that define a check digit are verified against it.
package barcode

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scansync/internal/common"
)

const (
	minDigits = 8
	maxDigits = 14
)

// Normalize strips everything but digits and converts 12-digit UPC-A codes
// to EAN-13 by left-padding a zero, so UPC and EAN scans of the same product
// share one cache and queue key.
func Normalize(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 {
		return "0" + digits
	}
	return digits
}

// Validate checks the shape of a scanned or manually entered code and
// returns the normalized form. Errors wrap common.ErrorInvalidBarcode.
func Validate(code string) (string, error) {
	digits := Normalize(code)
	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", fmt.Errorf("%w: need %d-%d digits, got %d", common.ErrorInvalidBarcode, minDigits, maxDigits, len(digits))
	}
	if supportsChecksum(len(digits)) && !validChecksum(digits) {
		return "", fmt.Errorf("%w: checksum mismatch", common.ErrorInvalidBarcode)
	}
	return digits, nil
}

func supportsChecksum(length int) bool {
	switch length {
	case 8, 13, 14:
		return true
	default:
		return false
	}
}

// validChecksum verifies the UPC/EAN check digit: alternating weights 3 and 1
// from the right, excluding the check digit itself.
func validChecksum(code string) bool {
	sum := 0
	weight := 3
	for i := len(code) - 2; i >= 0; i-- {
		sum += int(code[i]-'0') * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	check := (10 - sum%10) % 10
	return check == int(code[len(code)-1]-'0')
}
