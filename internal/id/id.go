package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UUID generates a random UUID v4.
func UUID() string {
	return uuid.NewString()
}

// ULID generates a new monotonic ULID.
func ULID() string {
	return ulid.Make().String()
}

// IsValidULID checks if a string is a valid ULID.
func IsValidULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// ULIDTime extracts the timestamp from a ULID.
func ULIDTime(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ULID %q: %w", s, err)
	}
	return ulid.Time(u.Time()), nil
}
