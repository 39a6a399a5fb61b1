package enums

import "fmt"

// SyncStatus records the outcome of mirroring a local order to the backend.
type SyncStatus string

const (
	SyncStatusQueued SyncStatus = "queued"
	SyncStatusOK     SyncStatus = "ok"
	SyncStatusFailed SyncStatus = "failed"
	// SyncStatusRejected marks a row the backend refused on its content.
	// Sending it again cannot succeed, so resync leaves it alone.
	SyncStatusRejected SyncStatus = "rejected"
)

var validSyncStatuses = []SyncStatus{
	SyncStatusQueued,
	SyncStatusOK,
	SyncStatusFailed,
	SyncStatusRejected,
}

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncStatus.
func (s SyncStatus) IsValid() bool {
	for _, candidate := range validSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// NeedsResync reports whether an order with this status should be retried.
func (s SyncStatus) NeedsResync() bool {
	return s == SyncStatusQueued || s == SyncStatusFailed
}

// ParseSyncStatus converts raw input into a SyncStatus.
func ParseSyncStatus(value string) (SyncStatus, error) {
	for _, candidate := range validSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync status %q", value)
}
