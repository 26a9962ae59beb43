package attendance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edutrack/internal/apperr"
)

func TestDistanceSymmetric(t *testing.T) {
	pairs := []struct {
		a, b Location
	}{
		{Location{12.9716, 77.5946}, Location{12.9726, 77.5956}},
		{Location{0, 0}, Location{0, 1}},
		{Location{-33.8688, 151.2093}, Location{51.5074, -0.1278}},
		{Location{89.9, 179.9}, Location{-89.9, -179.9}},
	}
	for _, p := range pairs {
		ab := Distance(p.a, p.b)
		ba := Distance(p.b, p.a)
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestDistanceIdentity(t *testing.T) {
	p := Location{12.9716, 77.5946}
	assert.InDelta(t, 0, Distance(p, p), 1e-9)
}

func TestVerifyGeofenceBoundaryInclusive(t *testing.T) {
	center := Location{12.9716, 77.5946}
	claimed := Location{12.9725, 77.5946}

	d := Distance(center, claimed)
	require.Greater(t, d, 0.0)

	// A point exactly at the radius is inside.
	res, err := VerifyGeofence(center, d, claimed)
	require.NoError(t, err)
	assert.True(t, res.WithinRadius)
	assert.InDelta(t, d, res.DistanceMeters, 1e-9)

	// Any shrink of the radius puts it outside.
	res, err = VerifyGeofence(center, d-0.001, claimed)
	require.NoError(t, err)
	assert.False(t, res.WithinRadius)
}

func TestVerifyGeofenceCampusScenario(t *testing.T) {
	// Class geofence in Bangalore, student ~100m east.
	center := Location{12.9716, 77.5946}
	student := Location{12.9716, 77.5955}

	res, err := VerifyGeofence(center, 100, student)
	require.NoError(t, err)
	assert.True(t, res.WithinRadius)
	assert.Greater(t, res.DistanceMeters, 90.0)
	assert.Less(t, res.DistanceMeters, 101.0)
}

func TestVerifyGeofenceRejectsBadCoordinates(t *testing.T) {
	center := Location{12.9716, 77.5946}
	cases := []Location{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	}
	for _, claimed := range cases {
		_, err := VerifyGeofence(center, 100, claimed)
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidLocation, apperr.KindOf(err))
	}

	// A bad center fails the same way.
	_, err := VerifyGeofence(Location{200, 0}, 100, center)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidLocation, apperr.KindOf(err))
}
