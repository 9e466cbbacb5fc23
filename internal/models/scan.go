package models

import (
	"fmt"
	"time"
)

// ScanPayload is the decoded content of a scanned QR code.
// Timestamp is the creation instant in milliseconds since epoch; payloads
// older than the freshness window are rejected before any network call.
type ScanPayload struct {
	StoreID   string `json:"storeId"`
	StoreCode string `json:"storeCode"`
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"`
}

// Age returns how old the payload is relative to now.
func (p ScanPayload) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(p.Timestamp))
}

// LocationSample is a device geolocation reading attached to a scan.
// Absence is legal; geofence validation is skipped without one.
type LocationSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// ValidationOutcome is the result of token validation. Exactly one of
// IsValid/RateLimited drives caller branching; both false together means a
// generic invalid token. Queued marks the deferred third state: the scan was
// captured offline and will be delivered later, which callers must render
// distinctly from "invalid".
type ValidationOutcome struct {
	IsValid     bool   `json:"isValid"`
	RateLimited bool   `json:"rateLimited"`
	Queued      bool   `json:"queued"`
	TokenID     string `json:"tokenId,omitempty"`
	Message     string `json:"message"`
}

// Check result types. The remote side decides checkin-vs-checkout; the
// engine only interprets the returned action type.
const (
	CheckTypeIn    = "checkin"
	CheckTypeOut   = "checkout"
	CheckTypeError = "error"
)

// CheckResult is the result of a check-in/out attempt.
type CheckResult struct {
	Success   bool      `json:"success"`
	Type      string    `json:"type"`
	RecordID  string    `json:"recordId,omitempty"`
	Message   string    `json:"message"`
	Queued    bool      `json:"queued"`
	Timestamp time.Time `json:"timestamp"`
}

// QueueOperation identifies which remote call a queued scan replays.
type QueueOperation string

const (
	QueueOpValidate QueueOperation = "validate"
	QueueOpCheckIn  QueueOperation = "checkin"
)

// QueuedScan is a scan captured while offline, persisted so it survives
// process restarts. RetryCount increases on each failed replay; the item is
// dropped once it exceeds the retry cap or the age ceiling.
type QueuedScan struct {
	ID         string          `json:"id"`
	Operation  QueueOperation  `json:"operation"`
	Payload    ScanPayload     `json:"payload"`
	Location   *LocationSample `json:"location,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	EmployeeID string          `json:"employeeId,omitempty"`
	QueuedAt   int64           `json:"queuedAt"`
	RetryCount int             `json:"retryCount"`
}

// QueuedScanID derives a queue item id from the store and enqueue time.
func QueuedScanID(storeID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", storeID, at.UnixMilli())
}

// ScanMetrics is per-scan telemetry, written progressively over a scan's
// lifecycle and swept after an hour to bound memory.
type ScanMetrics struct {
	ScanStartTime  time.Time     `json:"scanStartTime"`
	NetworkLatency time.Duration `json:"networkLatency"`
	ValidationTime time.Duration `json:"validationTime"`
	TotalTime      time.Duration `json:"totalTime"`
	RetryCount     int           `json:"retryCount"`
	ConnectionType string        `json:"connectionType"`
}

// RateLimitWindow is the persisted sliding window of scan timestamps
// (milliseconds) for one (user, store) pair. Version guards the persisted
// schema so future changes don't silently corrupt stored state.
type RateLimitWindow struct {
	Version int     `json:"version"`
	Stamps  []int64 `json:"stamps"`
}

// CurrentSchemaVersion is the version written into persisted local state.
const CurrentSchemaVersion = 1
