package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		expected  float64
		tolerance float64
	}{
		{
			name:     "same point",
			lat1:     19.0760, lng1: 72.8777,
			lat2:     19.0760, lng2: 72.8777,
			expected: 0, tolerance: 0.01,
		},
		{
			// Gateway of India to CST, roughly 2.3 km
			name:     "within one city",
			lat1:     18.9220, lng1: 72.8347,
			lat2:     18.9398, lng2: 72.8355,
			expected: 1980, tolerance: 100,
		},
		{
			// Mumbai to Delhi, roughly 1150 km
			name:     "across the country",
			lat1:     19.0760, lng1: 72.8777,
			lat2:     28.7041, lng2: 77.1025,
			expected: 1163000, tolerance: 20000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, distance, tt.tolerance)
		})
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	forward := DistanceMeters(12.9716, 77.5946, 13.0827, 80.2707)
	backward := DistanceMeters(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, forward, backward, 0.001)
}
