package checkin

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"clockin/internal/gateway"
	"clockin/internal/models"
	"clockin/internal/retry"
	"clockin/internal/utils"
)

// Service is the check-in façade. Construct exactly one per device in the
// application's composition root and pass it by reference; it holds the
// queue binding and the per-scan telemetry.
type Service struct {
	limiter  RateLimiter
	geofence GeofenceValidator
	queue    OfflineQueue
	monitor  NetworkMonitor
	gateway  Gateway
	hash     Hasher
	cfg      Config
	metrics  *metricsStore
	inFlight atomic.Bool
	now      func() time.Time
}

// NewService wires the façade. It binds the queue's replay to this service
// and arranges a drain on every offline-to-online transition.
func NewService(limiter RateLimiter, geo GeofenceValidator, q OfflineQueue,
	monitor NetworkMonitor, gw Gateway, cfg Config) *Service {
	if limiter == nil {
		panic("rate limiter is required")
	}
	if geo == nil {
		panic("geofence validator is required")
	}
	if q == nil {
		panic("offline queue is required")
	}
	if monitor == nil {
		panic("network monitor is required")
	}
	if gw == nil {
		panic("gateway is required")
	}
	if cfg.Hasher == nil {
		cfg.Hasher = utils.TokenDigest
	}
	if cfg.MetricsMaxAge <= 0 {
		cfg.MetricsMaxAge = DefaultMetricsMaxAge
	}

	s := &Service{
		limiter:  limiter,
		geofence: geo,
		queue:    q,
		monitor:  monitor,
		gateway:  gw,
		hash:     cfg.Hasher,
		cfg:      cfg,
		metrics:  newMetricsStore(cfg.MetricsMaxAge),
		now:      time.Now,
	}

	q.SetReplayFunc(s.replay)
	monitor.OnOnline(func() { go q.Drain(context.Background()) })
	s.metrics.startSweeper(cfg.MetricsMaxAge)

	return s
}

// Close stops the background telemetry sweeper.
func (s *Service) Close() {
	s.metrics.close()
}

// ValidateToken checks a scanned token against the backend. The local rate
// limit runs first and blocks without a network call; offline attempts are
// queued and reported as the distinct queued outcome, not an error.
func (s *Service) ValidateToken(ctx context.Context, payload models.ScanPayload, userID string) (models.ValidationOutcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.ValidationOutcome{}, ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	start := s.now()
	scanID := models.QueuedScanID(payload.StoreID, start)
	m := s.metrics.begin(scanID, s.monitor.ConnectionSpeed())
	defer func() { m.TotalTime = s.now().Sub(start) }()

	allowed, err := s.limiter.CheckAndRecord(ctx, userID, payload.StoreID)
	if err != nil {
		// The limiter is a courtesy fast path; a broken local store must
		// not block scanning. The backend still enforces the real limit.
		log.Printf("local rate limit check failed, allowing: %v", err)
		allowed = true
	}
	if !allowed {
		return models.ValidationOutcome{
			RateLimited: true,
			Message:     "too many scan attempts, please wait a minute before trying again",
		}, nil
	}

	digest := s.hash(payload.Token)

	if !s.monitor.IsOnline() {
		return s.queueValidation(ctx, payload, userID)
	}

	callStart := s.now()
	resp, retries, err := retry.Do(ctx, func(ctx context.Context) (*gateway.ValidationResponse, error) {
		return s.gateway.ValidateToken(ctx, gateway.ValidationRequest{
			TokenDigest:    digest,
			StoreID:        payload.StoreID,
			Identifier:     userID,
			IdentifierType: IdentifierTypeUser,
		})
	}, s.cfg.retryOptions())
	m.RetryCount = retries
	m.NetworkLatency = s.now().Sub(callStart)
	m.ValidationTime = m.NetworkLatency

	if err != nil {
		if !s.monitor.IsOnline() {
			return s.queueValidation(ctx, payload, userID)
		}
		return models.ValidationOutcome{}, fmt.Errorf("token validation failed: %w", err)
	}

	return models.ValidationOutcome{
		IsValid:     resp.IsValid,
		RateLimited: resp.RateLimited,
		TokenID:     resp.TokenID,
		Message:     resp.Message,
	}, nil
}

// ProcessCheckIn submits a check-in/out attempt. A failed geofence check is
// the only hard rejection here; the backend decides checkin versus checkout
// and this engine only interprets the returned action type.
func (s *Service) ProcessCheckIn(ctx context.Context, payload models.ScanPayload, employeeID string, loc *models.LocationSample) (models.CheckResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.CheckResult{}, ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	start := s.now()
	scanID := models.QueuedScanID(payload.StoreID, start)
	m := s.metrics.begin(scanID, s.monitor.ConnectionSpeed())
	defer func() { m.TotalTime = s.now().Sub(start) }()

	if loc != nil && !s.geofence.IsWithinGeofence(ctx, payload.StoreID, *loc) {
		result := models.CheckResult{
			Success:   false,
			Type:      models.CheckTypeError,
			Message:   "location is outside the store's allowed area",
			Timestamp: s.now(),
		}
		s.logScan(payload, employeeID, scanResultGeofenceRejected, result.Message, 0, loc)
		return result, nil
	}

	digest := s.hash(payload.Token)

	if !s.monitor.IsOnline() {
		return s.queueCheckIn(ctx, payload, employeeID, loc)
	}

	req := gateway.CheckInRequest{
		EmployeeID:  employeeID,
		StoreID:     payload.StoreID,
		TokenDigest: digest,
	}
	if loc != nil {
		req.Latitude = &loc.Latitude
		req.Longitude = &loc.Longitude
		req.Accuracy = &loc.Accuracy
	}

	callStart := s.now()
	resp, retries, err := retry.Do(ctx, func(ctx context.Context) (*gateway.CheckInResponse, error) {
		return s.gateway.ProcessCheckIn(ctx, req)
	}, s.cfg.retryOptions())
	m.RetryCount = retries
	m.NetworkLatency = s.now().Sub(callStart)

	if err != nil {
		if !s.monitor.IsOnline() {
			return s.queueCheckIn(ctx, payload, employeeID, loc)
		}
		s.logScan(payload, employeeID, scanResultFailure, err.Error(), m.NetworkLatency.Milliseconds(), loc)
		return models.CheckResult{}, fmt.Errorf("check-in processing failed: %w", err)
	}

	result := models.CheckResult{
		Success:   resp.Success,
		Type:      checkType(resp),
		RecordID:  resp.RecordID,
		Message:   resp.Message,
		Timestamp: s.now(),
	}

	outcome := scanResultSuccess
	if !resp.Success {
		outcome = scanResultFailure
	}
	s.logScan(payload, employeeID, outcome, resp.Message, m.NetworkLatency.Milliseconds(), loc)

	return result, nil
}

func checkType(resp *gateway.CheckInResponse) string {
	switch resp.ActionType {
	case models.CheckTypeIn, models.CheckTypeOut:
		return resp.ActionType
	default:
		return models.CheckTypeError
	}
}

func (s *Service) queueValidation(ctx context.Context, payload models.ScanPayload, userID string) (models.ValidationOutcome, error) {
	item := models.QueuedScan{
		Operation: models.QueueOpValidate,
		Payload:   payload,
		UserID:    userID,
	}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		log.Printf("failed to persist queued validation: %v", err)
	}
	return models.ValidationOutcome{
		Queued:  true,
		Message: "offline - scan saved and will be validated once the connection returns",
	}, nil
}

func (s *Service) queueCheckIn(ctx context.Context, payload models.ScanPayload, employeeID string, loc *models.LocationSample) (models.CheckResult, error) {
	item := models.QueuedScan{
		Operation:  models.QueueOpCheckIn,
		Payload:    payload,
		Location:   loc,
		EmployeeID: employeeID,
	}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		log.Printf("failed to persist queued check-in: %v", err)
	}
	return models.CheckResult{
		Success:   false,
		Type:      models.CheckTypeError,
		Queued:    true,
		Message:   "offline - check-in saved and will be delivered once the connection returns",
		Timestamp: s.now(),
	}, nil
}

// replay delivers one queued scan during a drain. It only transports the
// request; stale geofence state is not re-checked on replay.
func (s *Service) replay(ctx context.Context, item models.QueuedScan) error {
	digest := s.hash(item.Payload.Token)

	switch item.Operation {
	case models.QueueOpValidate:
		resp, err := s.gateway.ValidateToken(ctx, gateway.ValidationRequest{
			TokenDigest:    digest,
			StoreID:        item.Payload.StoreID,
			Identifier:     item.UserID,
			IdentifierType: IdentifierTypeUser,
		})
		if err != nil {
			return err
		}
		log.Printf("replayed validation for %s: valid=%v", item.ID, resp.IsValid)
		return nil

	case models.QueueOpCheckIn:
		req := gateway.CheckInRequest{
			EmployeeID:  item.EmployeeID,
			StoreID:     item.Payload.StoreID,
			TokenDigest: digest,
		}
		if item.Location != nil {
			req.Latitude = &item.Location.Latitude
			req.Longitude = &item.Location.Longitude
			req.Accuracy = &item.Location.Accuracy
		}
		resp, err := s.gateway.ProcessCheckIn(ctx, req)
		if err != nil {
			return err
		}
		s.logScan(item.Payload, item.EmployeeID, scanResultSuccess, resp.Message, 0, item.Location)
		log.Printf("replayed check-in for %s: %s", item.ID, resp.ActionType)
		return nil

	default:
		// Unknown operations are not retryable; report delivered so the
		// queue drops them instead of cycling forever.
		log.Printf("dropping queued scan %s with unknown operation %q", item.ID, item.Operation)
		return nil
	}
}

// logScan ships one analytics record in the background. Logging failures
// are swallowed; they must never affect the primary result.
func (s *Service) logScan(payload models.ScanPayload, employeeID, result, message string, responseMs int64, loc *models.LocationSample) {
	entry := gateway.ScanLogEntry{
		StoreID:        payload.StoreID,
		EmployeeID:     employeeID,
		TokenDigest:    s.hash(payload.Token),
		Result:         result,
		ResponseTimeMs: responseMs,
		Location:       loc,
		DeviceInfo:     s.cfg.DeviceInfo,
	}
	if result != scanResultSuccess {
		entry.ErrorMessage = message
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.gateway.LogScan(ctx, entry); err != nil {
			log.Printf("scan log dropped: %v", err)
		}
	}()
}
