package models

import (
	"time"

	"gorm.io/gorm"
)

// Backend records used by the development server. The engine itself never
// touches these; it only sees the wire shapes in the gateway package.

type Store struct {
	gorm.Model
	StoreID      string  `gorm:"uniqueIndex;not null"`
	Code         string  `gorm:"uniqueIndex;not null"`
	Name         string  `gorm:"not null"`
	Latitude     float64 `gorm:"not null"`
	Longitude    float64 `gorm:"not null"`
	RadiusMeters float64 `gorm:"not null;default:100"`
	Status       string  `gorm:"default:'active'"`
}

type Employee struct {
	gorm.Model
	EmployeeID string `gorm:"uniqueIndex;not null"`
	Email      string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"not null"`
	Name       string `gorm:"not null"`
	StoreID    string `gorm:"index;not null"`
	Status     string `gorm:"default:'active'"`
}

// ScanToken is a one-time scan token at rest. Only the digest is stored;
// the plaintext leaves the server once, inside the minted QR payload.
type ScanToken struct {
	gorm.Model
	TokenID   string `gorm:"uniqueIndex;not null"`
	Digest    string `gorm:"uniqueIndex;not null"`
	StoreID   string `gorm:"index;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Consumed reports whether the token was already spent.
func (t *ScanToken) Consumed() bool {
	return t.UsedAt != nil
}

// AttendanceRecord is one check-in or check-out event. The newest record
// for an (employee, store) pair decides the next toggle direction.
type AttendanceRecord struct {
	gorm.Model
	RecordID    string `gorm:"uniqueIndex;not null"`
	EmployeeID  string `gorm:"index;not null"`
	StoreID     string `gorm:"index;not null"`
	ActionType  string `gorm:"not null"`
	TokenDigest string
	Latitude    *float64
	Longitude   *float64
	Accuracy    *float64
	RecordedAt  time.Time `gorm:"index;not null"`
}

// ScanLog is one scan analytics record, best-effort from devices.
type ScanLog struct {
	gorm.Model
	StoreID        string `gorm:"index"`
	EmployeeID     string `gorm:"index"`
	TokenDigest    string
	Result         string `gorm:"index"`
	ErrorMessage   string
	ResponseTimeMs int64
	Latitude       *float64
	Longitude      *float64
	DeviceInfo     string
}
