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

// Token repository errors
var (
	ErrTokenNotFound = errors.New("scan token not found")
	ErrTokenExpired  = errors.New("scan token has expired")
	ErrTokenConsumed = errors.New("scan token already used")
)

// ScanTokenRepository manages one-time scan tokens at rest.
type ScanTokenRepository struct {
	db *gorm.DB
}

func NewScanTokenRepository(db *gorm.DB) *ScanTokenRepository {
	return &ScanTokenRepository{db: db}
}

// Mint stores the digest of a freshly issued token.
func (r *ScanTokenRepository) Mint(ctx context.Context, storeID, digest string, ttl time.Duration) (*models.ScanToken, error) {
	token := &models.ScanToken{
		TokenID:   uuid.NewString(),
		Digest:    digest,
		StoreID:   storeID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to mint scan token: %w", err)
	}
	return token, nil
}

// GetByDigest fetches a token without spending it.
func (r *ScanTokenRepository) GetByDigest(ctx context.Context, storeID, digest string) (*models.ScanToken, error) {
	var token models.ScanToken
	err := r.db.WithContext(ctx).
		Where("digest = ? AND store_id = ?", digest, storeID).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Consume validates and spends a token by digest, atomically, so a digest
// replayed from two devices can only succeed once.
func (r *ScanTokenRepository) Consume(ctx context.Context, storeID, digest string) (*models.ScanToken, error) {
	var token models.ScanToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("digest = ? AND store_id = ?", digest, storeID).
			First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		if token.Consumed() {
			return ErrTokenConsumed
		}
		if time.Now().After(token.ExpiresAt) {
			return ErrTokenExpired
		}

		now := time.Now()
		token.UsedAt = &now
		return tx.Save(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}
