package luhn

import (
	"github.com/pkg/errors"
)

const (
	checkDigitBase       = 10 // Base for calculating the checksum
	checkDigitAdjustment = 9  // Adjustment value when the doubled digit exceeds 9
)

// ErrInvalidArgument is returned when a generation request can't produce a number.
var ErrInvalidArgument = errors.New("invalid argument")

// Checksum calculates the Luhn sum of digits. Parity is anchored to the rightmost digit:
// position 1 from the right is kept as is, every even position is doubled.
// digits must contain only '0'..'9'.
func Checksum(digits string) int {
	sum := 0
	isSecond := false

	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if isSecond {
			digit *= 2
			if digit > checkDigitBase-1 {
				digit -= checkDigitAdjustment
			}
		}
		sum += digit
		isSecond = !isSecond
	}

	return sum
}

// IsValid checks if the candidate is valid according to the Luhn algorithm.
// Empty or non-digit input is reported as invalid, never as an error.
func IsValid(candidate string) bool {
	if !isDigits(candidate) {
		return false
	}

	return Checksum(candidate)%checkDigitBase == 0
}

// CheckDigit returns the digit that completes payload into a Luhn-valid number.
func CheckDigit(payload string) (byte, error) {
	if payload != "" && !isDigits(payload) {
		return 0, errors.Wrapf(ErrInvalidArgument, "payload %q contains non-digit characters", payload)
	}

	// Checksum a probe of the final length so parity lines up with the check digit slot.
	sum := Checksum(payload + "0")

	return byte('0' + (checkDigitBase-sum%checkDigitBase)%checkDigitBase), nil
}

// Generate builds a Luhn-valid number of exactly length digits, drawing the payload from src.
func Generate(src Source, length int) (string, error) {
	if length <= 0 {
		return "", errors.Wrapf(ErrInvalidArgument, "length must be positive, got %d", length)
	}

	number := make([]byte, length)
	for i := 0; i < length-1; i++ {
		number[i] = byte('0' + src.IntN(checkDigitBase))
	}

	checkDigit, err := CheckDigit(string(number[:length-1]))
	if err != nil {
		return "", err
	}
	number[length-1] = checkDigit

	return string(number), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
