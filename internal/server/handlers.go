package server

import (
	"errors"
	"log"
	"time"

	"clockin/internal/gateway"
	"clockin/internal/models"
	"clockin/internal/repositories"
	"clockin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// ScanTokenTTL is how long a minted QR payload stays redeemable serverside.
// The device-side freshness window is tighter; this only bounds replay of a
// digest the engine queued while offline.
const ScanTokenTTL = 25 * time.Hour

// Handler carries the devserver's dependencies.
type Handler struct {
	tokens     *repositories.ScanTokenRepository
	attendance *repositories.AttendanceRepository
	stores     *repositories.StoreRepository
	employees  *repositories.EmployeeRepository
	limiter    *RedisRateLimiter
}

func NewHandler(
	tokens *repositories.ScanTokenRepository,
	attendance *repositories.AttendanceRepository,
	stores *repositories.StoreRepository,
	employees *repositories.EmployeeRepository,
	limiter *RedisRateLimiter,
) *Handler {
	return &Handler{
		tokens:     tokens,
		attendance: attendance,
		stores:     stores,
		employees:  employees,
		limiter:    limiter,
	}
}

// Health is the engine's connection probe target.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an employee and issues a device token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	employee, err := h.employees.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := IssueToken(employee)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}
	return c.JSON(fiber.Map{"access_token": token, "employee_id": employee.EmployeeID})
}

// MintQR issues a fresh one-time scan payload for a store. Only the token's
// digest is kept at rest.
func (h *Handler) MintQR(c *fiber.Ctx) error {
	storeID := c.Params("id")
	store, err := h.stores.GetByStoreID(c.Context(), storeID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "store not found"})
	}

	plaintext := utils.MustGenerateScanToken()
	if _, err := h.tokens.Mint(c.Context(), store.StoreID, utils.TokenDigest(plaintext), ScanTokenTTL); err != nil {
		log.Printf("failed to mint scan token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mint token"})
	}

	return c.JSON(models.ScanPayload{
		StoreID:   store.StoreID,
		StoreCode: store.Code,
		Token:     plaintext,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ValidateScan is the authoritative token validation: remote rate limit,
// then single-use consumption of the digest.
func (h *Handler) ValidateScan(c *fiber.Ctx) error {
	var req gateway.ValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	allowed, err := h.limiter.Allow(c.Context(), req.Identifier, req.StoreID)
	if err != nil {
		log.Printf("remote rate limiter unavailable: %v", err)
		// The limiter being down must not take token validation with it.
		allowed = true
	}
	if !allowed {
		return c.JSON(gateway.ValidationResponse{
			RateLimited: true,
			Message:     "too many scan attempts for this store",
		})
	}

	token, err := h.tokens.Consume(c.Context(), req.StoreID, req.TokenDigest)
	if err != nil {
		return c.JSON(gateway.ValidationResponse{Message: validationMessage(err)})
	}

	return c.JSON(gateway.ValidationResponse{
		IsValid: true,
		TokenID: token.TokenID,
		Message: "token accepted",
	})
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, repositories.ErrTokenNotFound):
		return "unknown token"
	case errors.Is(err, repositories.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, repositories.ErrTokenConsumed):
		return "token already used"
	default:
		return "validation failed"
	}
}

// recentUseGrace lets a check-in redeem a digest its own validate call just
// consumed.
const recentUseGrace = 2 * time.Minute

// ProcessCheckIn records an attendance event. The toggle direction comes
// from the employee's latest record, not from the device.
func (h *Handler) ProcessCheckIn(c *fiber.Ctx) error {
	var req gateway.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	token, err := h.tokens.Consume(c.Context(), req.StoreID, req.TokenDigest)
	if err != nil {
		if !errors.Is(err, repositories.ErrTokenConsumed) {
			return c.JSON(gateway.CheckInResponse{Success: false, ActionType: models.CheckTypeError, Message: validationMessage(err)})
		}
		// Consumed moments ago by this scan's validate call.
		token, err = h.tokens.GetByDigest(c.Context(), req.StoreID, req.TokenDigest)
		if err != nil || token.UsedAt == nil || time.Since(*token.UsedAt) > recentUseGrace {
			return c.JSON(gateway.CheckInResponse{Success: false, ActionType: models.CheckTypeError, Message: "token already used"})
		}
	}

	action, err := h.attendance.NextAction(c.Context(), req.EmployeeID, req.StoreID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve attendance state"})
	}

	recordID, err := h.attendance.Record(c.Context(), models.AttendanceRecord{
		EmployeeID:  req.EmployeeID,
		StoreID:     req.StoreID,
		ActionType:  action,
		TokenDigest: req.TokenDigest,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Accuracy:    req.Accuracy,
		RecordedAt:  time.Now(),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record attendance"})
	}

	return c.JSON(gateway.CheckInResponse{
		Success:    true,
		ActionType: action,
		RecordID:   recordID,
		Message:    "attendance recorded",
	})
}

// CheckGeofence compares the reported location against the store's
// registered coordinates and radius.
func (h *Handler) CheckGeofence(c *fiber.Ctx) error {
	var req gateway.GeofenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	store, err := h.stores.GetByStoreID(c.Context(), req.StoreID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "store not found"})
	}

	distance := haversineMeters(req.Latitude, req.Longitude, store.Latitude, store.Longitude)
	return c.JSON(gateway.GeofenceResponse{WithinGeofence: distance <= store.RadiusMeters})
}

// LogScan stores one analytics record from a device.
func (h *Handler) LogScan(c *fiber.Ctx) error {
	var entry gateway.ScanLogEntry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	scanLog := models.ScanLog{
		StoreID:        entry.StoreID,
		EmployeeID:     entry.EmployeeID,
		TokenDigest:    entry.TokenDigest,
		Result:         entry.Result,
		ErrorMessage:   entry.ErrorMessage,
		ResponseTimeMs: entry.ResponseTimeMs,
		DeviceInfo:     entry.DeviceInfo,
	}
	if entry.Location != nil {
		scanLog.Latitude = &entry.Location.Latitude
		scanLog.Longitude = &entry.Location.Longitude
	}

	if err := h.attendance.LogScan(c.Context(), scanLog); err != nil {
		log.Printf("failed to store scan log: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store scan log"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
