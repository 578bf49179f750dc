package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), "2025-03-04T05:06:07.000Z"},
		{time.Date(2025, 3, 4, 5, 6, 7, 123456789, time.UTC), "2025-03-04T05:06:07.123Z"},
		{time.Date(2025, 1, 1, 1, 0, 0, 0, loc), "2024-12-31T23:00:00.000Z"},
	}
	for i, tc := range cases {
		if got := Timestamp(tc.in); got != tc.want {
			t.Fatalf("case %d: Timestamp() = %q, want %q", i, got, tc.want)
		}
	}
}

func TestStorageError(t *testing.T) {
	if NewStorageError("insert donation", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}

	cause := errors.New("disk I/O error")
	err := fmt.Errorf("record donation: %w", NewStorageError("insert donation", cause))

	if !errors.Is(err, cause) {
		t.Fatalf("expected chain to contain cause")
	}
	if !IsStorageError(err) {
		t.Fatalf("expected IsStorageError to be true")
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "insert donation" {
		t.Fatalf("expected StorageError with op, got %v", err)
	}
	if IsStorageError(ErrNotFound) {
		t.Fatalf("sentinel errors are not storage errors")
	}
}
