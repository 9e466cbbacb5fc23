package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clockin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceRepository stores check-in/out events and scan analytics.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// NextAction decides the toggle for an employee at a store: checkin when
// the latest record is absent or a checkout, checkout otherwise.
func (r *AttendanceRepository) NextAction(ctx context.Context, employeeID, storeID string) (string, error) {
	var latest models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND store_id = ?", employeeID, storeID).
		Order("recorded_at DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CheckTypeIn, nil
		}
		return "", err
	}

	if latest.ActionType == models.CheckTypeIn {
		return models.CheckTypeOut, nil
	}
	return models.CheckTypeIn, nil
}

// Record persists one attendance event and returns its record id.
func (r *AttendanceRepository) Record(ctx context.Context, record models.AttendanceRecord) (string, error) {
	record.RecordID = uuid.NewString()
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to record attendance: %w", err)
	}
	return record.RecordID, nil
}

// LogScan persists one analytics record. Best effort on the caller's side;
// the repository itself still reports errors.
func (r *AttendanceRepository) LogScan(ctx context.Context, entry models.ScanLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

// StoreRepository looks up store registrations.
type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// ErrStoreNotFound is returned for unknown store ids.
var ErrStoreNotFound = errors.New("store not found")

func (r *StoreRepository) GetByStoreID(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

// EmployeeRepository looks up employees for authentication.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ErrEmployeeNotFound is returned for unknown employee emails.
var ErrEmployeeNotFound = errors.New("employee not found")

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}
