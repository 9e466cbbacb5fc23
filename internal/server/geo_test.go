package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		assert.InDelta(t, 0, haversineMeters(13.75, 100.5, 13.75, 100.5), 0.01)
	})

	t.Run("known city pair", func(t *testing.T) {
		// Bangkok to Chiang Mai is roughly 580-600 km.
		d := haversineMeters(13.7563, 100.5018, 18.7883, 98.9853)
		assert.InDelta(t, 588000, d, 15000)
	})

	t.Run("short hop stays in geofence scale", func(t *testing.T) {
		// ~100m of latitude.
		d := haversineMeters(13.7500, 100.5000, 13.7509, 100.5000)
		assert.InDelta(t, 100, d, 5)
	})
}
