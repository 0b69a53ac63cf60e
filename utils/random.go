package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateCode returns 2n uppercase hexadecimal characters from n random bytes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// BookingNumber builds a date-prefixed human-readable booking reference,
// e.g. BK-20250110-3F9A2C.
func BookingNumber(now time.Time) (string, error) {
	suffix, err := GenerateCode(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix), nil
}

// VoucherCode returns a candidate voucher code. Callers reject collisions
// against existing codes and retry with a bounded attempt count.
func VoucherCode() (string, error) {
	code, err := GenerateCode(4)
	if err != nil {
		return "", err
	}
	return "VC-" + code, nil
}
