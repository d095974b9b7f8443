package domain

import (
	"bank-ledger/internal/errors"
)

// ParseDocument normalizes an 11-digit document identifier and validates its
// two check digits. The returned value contains digits only.
func ParseDocument(raw string) (string, error) {
	digits := make([]byte, 0, 11)
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	if len(digits) != 11 {
		return "", errors.NewAppError(errors.InvalidDocument, "document must have 11 digits")
	}

	// All-equal sequences pass the checksum but are not valid identifiers.
	allEqual := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return "", errors.NewAppError(errors.InvalidDocument, "document checksum is invalid")
	}

	if checkDigit(digits[:9], 10) != int(digits[9]-'0') ||
		checkDigit(digits[:10], 11) != int(digits[10]-'0') {
		return "", errors.NewAppError(errors.InvalidDocument, "document checksum is invalid")
	}

	return string(digits), nil
}

func checkDigit(digits []byte, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += int(d-'0') * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
