package sensor_simulator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimals(x float64, places int) bool {
	p := math.Pow(10, float64(places))
	return math.Abs(x*p-math.Round(x*p)) < 1e-6
}

func TestRandomSource_Ranges(t *testing.T) {
	src := NewRandomSource(42, false)
	for i := 0; i < 1000; i++ {
		r, err := src.Next(false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.SoilMoisture, moistureMin)
		assert.LessOrEqual(t, r.SoilMoisture, moistureMax)
		assert.GreaterOrEqual(t, r.Temperature, tempMin)
		assert.LessOrEqual(t, r.Temperature, tempMax)
		assert.GreaterOrEqual(t, r.Humidity, humidityMin)
		assert.LessOrEqual(t, r.Humidity, humidityMax)
		assert.GreaterOrEqual(t, r.PH, phMin)
		assert.LessOrEqual(t, r.PH, phMax)
		assert.True(t, decimals(r.SoilMoisture, 1))
		assert.True(t, decimals(r.PH, 2))
		assert.Nil(t, r.N)
		assert.Nil(t, r.P)
		assert.Nil(t, r.K)
	}
}

func TestRandomSource_NPK(t *testing.T) {
	src := NewRandomSource(7, true)
	for i := 0; i < 200; i++ {
		r, _ := src.Next(false)
		require.NotNil(t, r.N)
		require.NotNil(t, r.P)
		require.NotNil(t, r.K)
		assert.True(t, *r.N >= nMin && *r.N <= nMax)
		assert.True(t, *r.P >= pMin && *r.P <= pMax)
		assert.True(t, *r.K >= kMin && *r.K <= kMax)
	}
}

func TestRandomSource_Deterministic(t *testing.T) {
	a, b := NewRandomSource(1, true), NewRandomSource(1, true)
	for i := 0; i < 10; i++ {
		ra, _ := a.Next(false)
		rb, _ := b.Next(true)
		assert.Equal(t, ra, rb)
	}
}

func TestDriftSource(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := NewDriftSource(3, false, 0.01)
	src.now = func() time.Time { return now }

	r, err := src.Next(false)
	require.NoError(t, err)
	assert.Equal(t, 30.0, r.SoilMoisture)

	// 10 minutes closed: -10%
	now = now.Add(10 * time.Minute)
	r, _ = src.Next(false)
	assert.InDelta(t, 20.0, r.SoilMoisture, 0.05)

	// 10 minutes irrigating: +6%
	now = now.Add(10 * time.Minute)
	r, _ = src.Next(true)
	assert.InDelta(t, 26.0, r.SoilMoisture, 0.05)

	// clamps at 0
	now = now.Add(24 * time.Hour)
	r, _ = src.Next(false)
	assert.Equal(t, 0.0, r.SoilMoisture)

	// clock going backwards changes nothing
	now = now.Add(-time.Hour)
	r, _ = src.Next(true)
	assert.Equal(t, 0.0, r.SoilMoisture)
}

func TestDriftSource_NegativeDecay(t *testing.T) {
	src := NewDriftSource(3, false, -5)
	assert.Equal(t, 0.0, src.decayPerMin)
}
