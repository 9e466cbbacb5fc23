package geofence

import (
	"context"
	"errors"
	"testing"

	"clockin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) CheckGeofence(ctx context.Context, storeID string, lat, lng float64) (bool, error) {
	args := m.Called(ctx, storeID, lat, lng)
	return args.Bool(0), args.Error(1)
}

func TestValidator_IsWithinGeofence(t *testing.T) {
	loc := models.LocationSample{Latitude: 13.75, Longitude: 100.5, Accuracy: 10}

	t.Run("inside radius", func(t *testing.T) {
		checker := new(MockChecker)
		checker.On("CheckGeofence", mock.Anything, "S1", loc.Latitude, loc.Longitude).Return(true, nil)

		v := NewValidator(checker)
		assert.True(t, v.IsWithinGeofence(context.Background(), "S1", loc))
		checker.AssertExpectations(t)
	})

	t.Run("outside radius", func(t *testing.T) {
		checker := new(MockChecker)
		checker.On("CheckGeofence", mock.Anything, "S1", loc.Latitude, loc.Longitude).Return(false, nil)

		v := NewValidator(checker)
		assert.False(t, v.IsWithinGeofence(context.Background(), "S1", loc))
	})

	t.Run("remote error fails open", func(t *testing.T) {
		checker := new(MockChecker)
		checker.On("CheckGeofence", mock.Anything, "S1", loc.Latitude, loc.Longitude).
			Return(false, errors.New("timeout"))

		v := NewValidator(checker)
		assert.True(t, v.IsWithinGeofence(context.Background(), "S1", loc))
	})
}
