package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/farm-node/internal/model"
)

// Source produces one reading per cycle. irrigating is the node's current
// actuation value, for sources that model its effect on the soil.
type Source interface {
	Next(irrigating bool) (model.Reading, error)
}

// ====== Ranges ======
const (
	moistureMin, moistureMax = 20.0, 70.0
	tempMin, tempMax         = 18.0, 35.0
	humidityMin, humidityMax = 40.0, 90.0
	phMin, phMax             = 5.5, 8.0

	// mg/kg
	nMin, nMax = 10, 140
	pMin, pMax = 5, 60
	kMin, kMax = 10, 200
)

// RandomSource draws every value uniformly from a fixed range.
type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
	npk bool
}

func NewRandomSource(seed int64, npk bool) *RandomSource {
	return &RandomSource{rnd: rand.New(rand.NewSource(seed)), npk: npk}
}

func (s *RandomSource) Next(_ bool) (model.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := model.Reading{SoilMoisture: round(s.uniform(moistureMin, moistureMax), 1)}
	s.ambient(&r)
	return r, nil
}

func (s *RandomSource) uniform(lo, hi float64) float64 { return lo + s.rnd.Float64()*(hi-lo) }

func (s *RandomSource) intn(lo, hi int) *int {
	v := lo + s.rnd.Intn(hi-lo+1)
	return &v
}

// ambient fills everything but soil moisture. Caller holds mu.
func (s *RandomSource) ambient(r *model.Reading) {
	r.Temperature = round(s.uniform(tempMin, tempMax), 1)
	r.Humidity = round(s.uniform(humidityMin, humidityMax), 1)
	r.PH = round(s.uniform(phMin, phMax), 2)
	if s.npk {
		r.N = s.intn(nMin, nMax)
		r.P = s.intn(pMin, pMax)
		r.K = s.intn(kMin, kMax)
	}
}

const (
	// gainPerMin: +0.6% per minute while irrigating (fraction in [0..1]).
	defaultGainPerMin = 0.006
	// defaultSeed: starting soil moisture.
	defaultSeed = 0.30
)

// DriftSource keeps soil moisture as internal state: it decays while the
// valve is closed and rises while irrigating. The other values are random.
type DriftSource struct {
	*RandomSource

	moisture    float64 // [0..1]
	decayPerMin float64
	gainPerMin  float64
	last        time.Time
	now         func() time.Time
}

func NewDriftSource(seed int64, npk bool, decayPerMin float64) *DriftSource {
	return &DriftSource{
		RandomSource: NewRandomSource(seed, npk),
		moisture:     defaultSeed,
		decayPerMin:  math.Max(0, decayPerMin),
		gainPerMin:   defaultGainPerMin,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (g *DriftSource) Next(irrigating bool) (model.Reading, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.last.IsZero() {
		g.last = now
	}
	dtMin := math.Max(0, now.Sub(g.last).Minutes())
	if irrigating {
		g.moisture = clamp01(g.moisture + g.gainPerMin*dtMin)
	} else {
		g.moisture = clamp01(g.moisture - g.decayPerMin*dtMin)
	}
	g.last = now

	r := model.Reading{SoilMoisture: round(g.moisture*100, 1)}
	g.ambient(&r)
	return r, nil
}

// ===== Helpers =====

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
