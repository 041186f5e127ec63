package recommendation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
)

// Snapshot is the weather echoed back with a recommendation.
type Snapshot struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Humidity    float64 `json:"humidity"`
	WindDir     string  `json:"windDir"`
	WindScale   string  `json:"windScale"`
	ObsTime     string  `json:"obsTime"`
}

func snapshotOf(r weather.Reading) Snapshot {
	return Snapshot{
		Temperature: r.Temperature,
		FeelsLike:   r.FeelsLike,
		Condition:   r.Condition,
		Icon:        r.Icon,
		Humidity:    r.Humidity,
		WindDir:     r.WindDir,
		WindScale:   r.WindScale,
		ObsTime:     r.ObsTime,
	}
}

// Result is the engine output. Suggestions are nil when no item of that category exists.
type Result struct {
	Weather            Snapshot      `json:"weather"`
	RecommendationText string        `json:"recommendation_text"`
	SuggestedTop       *garment.Item `json:"suggested_top"`
	SuggestedBottom    *garment.Item `json:"suggested_bottom"`
}

// Suggestion is the short weather-only advice.
type Suggestion struct {
	Weather    weather.Reading `json:"weather"`
	Suggestion string          `json:"suggestion"`
	Seasons    []string        `json:"seasons"`
	Message    string          `json:"message"`
}

// Config tunes text generation.
type Config struct {
	TextTimeout time.Duration
	Temperature float32
}

// Picker chooses an index in [0, n).
type Picker interface {
	Intn(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPicker returns a goroutine-safe Picker seeded with seed.
func NewPicker(seed int64) Picker {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}
