package ranking

import (
	"errors"
	"time"

	"github.com/copperpitch/youthrank/internal/domain/match"
)

const (
	StatusActive      = "Active"
	StatusProvisional = "Provisional"
	StatusInactive    = "Inactive"
)

var ErrEmptyRoster = errors.New("empty master roster")

// Config gathers every tuning constant of the rating algorithm. The
// defaults are the canonical values; tests override single knobs.
type Config struct {
	WindowDays int

	// View selection and the tapered weight segments, most recent first.
	MaxViews      int
	SegmentSlots  [3]int
	SegmentShares [3]float64

	// Raw metric accumulation.
	CapGF int

	// Status assignment.
	ActiveMinGames    int
	InactiveAfterDays int

	// Logistic normalization spread multiplier.
	LogisticScale float64

	// Iterative opponent-strength solver.
	EloK               float64
	EtaBase            float64
	GapAlpha           float64
	SampleBeta         float64
	SampleFullGames    int
	MarginStep         float64
	MarginMin          float64
	MarginMax          float64
	CrossAgeBonus      float64
	DefaultOppStrength float64
	InitRatingLo       float64
	InitRatingHi       float64
	MaxIterations      int
	ConvergenceTol     float64
	OutlierSigma       float64

	// Composite score.
	OffenseWeight float64
	DefenseWeight float64
	SOSWeight     float64
	PenaltyGames  int
}

func DefaultConfig() Config {
	return Config{
		WindowDays:         365,
		MaxViews:           30,
		SegmentSlots:       [3]int{10, 15, 5},
		SegmentShares:      [3]float64{0.60, 0.30, 0.10},
		CapGF:              6,
		ActiveMinGames:     5,
		InactiveAfterDays:  180,
		LogisticScale:      1.5,
		EloK:               4.0,
		EtaBase:            0.05,
		GapAlpha:           0.5,
		SampleBeta:         0.6,
		SampleFullGames:    8,
		MarginStep:         0.1,
		MarginMin:          0.4,
		MarginMax:          1.6,
		CrossAgeBonus:      1.05,
		DefaultOppStrength: 0.35,
		InitRatingLo:       0.2,
		InitRatingHi:       0.8,
		MaxIterations:      10,
		ConvergenceTol:     0.01,
		OutlierSigma:       2.5,
		OffenseWeight:      0.20,
		DefenseWeight:      0.20,
		SOSWeight:          0.60,
		PenaltyGames:       20,
	}
}

// TeamInfo is what the engine needs to know about a roster member.
type TeamInfo struct {
	Key   string
	Name  string
	State string
}

// Input carries one division's rank run. Older and Younger are the
// adjacent-age rosters consulted for cross-age opponent context; either
// may be nil.
type Input struct {
	DivisionState string
	Roster        []TeamInfo
	Older         map[string]TeamInfo
	Younger       map[string]TeamInfo
	Matches       []match.Match
}

// Row is one rankings CSV line.
type Row struct {
	Rank            int
	TeamKey         string
	TeamName        string
	State           string
	Status          string
	GamesPlayed     int
	Wins            int
	Losses          int
	Ties            int
	GoalsFor        int
	GoalsAgainst    int
	OffenseRaw      float64
	DefenseRaw      float64
	SOSRaw          float64
	OffenseNorm     float64
	DefenseNorm     float64
	SOSNorm         float64
	PowerScore      float64
	GamesPenalty    float64
	PowerScoreAdj   float64
	LastGameDate    time.Time
	CrossAgeGames   int
	CrossAgePct     float64
	CrossStateGames int
	CrossStatePct   float64
}

// ConnectivityRow labels one roster team inside the opponent graph.
type ConnectivityRow struct {
	TeamKey       string
	ComponentID   int
	ComponentSize int
	Degree        int
}

// Summary reports what a rank run saw and how the solver terminated.
type Summary struct {
	Teams        int
	Matches      int
	WindowStart  time.Time
	AsOf         time.Time
	Iterations   int
	Converged    bool
	MeanAbsDelta float64
}

// Outcome is a full rank run: ranked rows, the connectivity report and
// the solver summary.
type Outcome struct {
	Rows         []Row
	Connectivity []ConnectivityRow
	Summary      Summary
}
