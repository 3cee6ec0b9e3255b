package ryanair

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Fingerprint derives the stable per-account device identifier sent in the
// X-DEVICE-FINGERPRINT header. The same email always yields the same
// fingerprint; it doubles as the key for persisted session records.
func Fingerprint(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", fmt.Errorf("fingerprint: email must not be empty")
	}

	sum := md5.Sum([]byte(normalized))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	return id.String(), nil
}
