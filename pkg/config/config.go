// Package config defines the thresholds that drive every PG Atlas metric.
//
// A [Config] is a plain value: it is built once (from [Default] or [Load]),
// validated, and then passed by value to each stage of the pipeline. No
// scorer keeps a package-level default, so recalibrating a metric is a single
// field change in a config file.
//
// # File Formats
//
// [Load] accepts TOML (.toml) and YAML (.yaml, .yml). Fields absent from the
// file keep their default values:
//
//	[gate]
//	criticality_percentile = 60
//	required = 2
//
//	[concentration]
//	hhi_critical = 4500
package config

import (
	"encoding/json"

	"github.com/pgatlas/pgatlas/pkg/cache"
	"github.com/pgatlas/pgatlas/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultActiveWindowDays  = 90
	DefaultDecayHalflifeDays = 30.0

	DefaultPonyThreshold   = 0.50
	DefaultHHIModerate     = 1500.0
	DefaultHHIConcentrated = 2500.0
	DefaultHHICritical     = 5000.0

	DefaultGateCriticalityPercentile = 50.0
	DefaultGateHHIMax                = 2500.0
	DefaultGateAdoptionPercentile    = 40.0
	DefaultGateRequired              = 2

	DefaultDebtCriticalityPercentile = 75.0
	DefaultDebtHHIMin                = 2500.0

	DefaultTrendActiveDays   = 14
	DefaultTrendStableDays   = 45
	DefaultTrendStagnantDays = 89

	DefaultFERCriticallyUnderfunded = 2.0
	DefaultFERUnderfunded           = 1.3
	DefaultFERBalanced              = 0.7
	DefaultFEROverfunded            = 0.4

	DefaultTopCritical    = 10
	DefaultTopKeystone    = 5
	DefaultTopUnderfunded = 5

	DefaultCompareRateTolerance = 0.01
	DefaultCompareHHITolerance  = 50.0
)

// =============================================================================
// Config
// =============================================================================

// Config holds every threshold used by the scoring pipeline.
type Config struct {
	Activity      Activity      `toml:"activity" yaml:"activity" json:"activity"`
	Criticality   Criticality   `toml:"criticality" yaml:"criticality" json:"criticality"`
	Concentration Concentration `toml:"concentration" yaml:"concentration" json:"concentration"`
	Gate          Gate          `toml:"gate" yaml:"gate" json:"gate"`
	Debt          Debt          `toml:"debt" yaml:"debt" json:"debt"`
	Trend         Trend         `toml:"trend" yaml:"trend" json:"trend"`
	Funding       Funding       `toml:"funding" yaml:"funding" json:"funding"`
	Snapshot      Snapshot      `toml:"snapshot" yaml:"snapshot" json:"snapshot"`
	Compare       Compare       `toml:"compare" yaml:"compare" json:"compare"`
}

// Activity controls the dormancy window used by the active projection.
type Activity struct {
	// WindowDays is the largest days-since-commit a repo may have and still
	// count as active.
	WindowDays int `toml:"window_days" yaml:"window_days" json:"window_days"`
}

// Criticality controls the decay-weighted criticality variant.
type Criticality struct {
	DecayHalflifeDays float64 `toml:"decay_halflife_days" yaml:"decay_halflife_days" json:"decay_halflife_days"`
}

// Concentration holds the pony-factor threshold and HHI tier boundaries.
// Tiers: healthy < HHIModerate <= moderate < HHIConcentrated <= concentrated
// < HHICritical <= critical.
type Concentration struct {
	PonyThreshold   float64 `toml:"pony_threshold" yaml:"pony_threshold" json:"pony_threshold"`
	HHIModerate     float64 `toml:"hhi_moderate" yaml:"hhi_moderate" json:"hhi_moderate"`
	HHIConcentrated float64 `toml:"hhi_concentrated" yaml:"hhi_concentrated" json:"hhi_concentrated"`
	HHICritical     float64 `toml:"hhi_critical" yaml:"hhi_critical" json:"hhi_critical"`
}

// Gate holds the per-signal thresholds and the number of signals required to pass.
type Gate struct {
	CriticalityPercentile float64 `toml:"criticality_percentile" yaml:"criticality_percentile" json:"criticality_percentile"`
	HHIMax                float64 `toml:"hhi_max" yaml:"hhi_max" json:"hhi_max"`
	AdoptionPercentile    float64 `toml:"adoption_percentile" yaml:"adoption_percentile" json:"adoption_percentile"`
	Required              int     `toml:"required" yaml:"required" json:"required"`
}

// Debt holds the maintenance debt surface qualification thresholds.
type Debt struct {
	CriticalityPercentile float64 `toml:"criticality_percentile" yaml:"criticality_percentile" json:"criticality_percentile"`
	HHIMin                float64 `toml:"hhi_min" yaml:"hhi_min" json:"hhi_min"`
}

// Trend holds the exclusive upper bounds (in days since last commit) of the
// active, stable and stagnant commit-recency classes. Anything at or beyond
// StagnantDays is declining.
type Trend struct {
	ActiveDays   int `toml:"active_days" yaml:"active_days" json:"active_days"`
	StableDays   int `toml:"stable_days" yaml:"stable_days" json:"stable_days"`
	StagnantDays int `toml:"stagnant_days" yaml:"stagnant_days" json:"stagnant_days"`
}

// Funding holds the funding efficiency ratio tier boundaries (strict lower bounds).
type Funding struct {
	CriticallyUnderfunded float64 `toml:"critically_underfunded" yaml:"critically_underfunded" json:"critically_underfunded"`
	Underfunded           float64 `toml:"underfunded" yaml:"underfunded" json:"underfunded"`
	Balanced              float64 `toml:"balanced" yaml:"balanced" json:"balanced"`
	Overfunded            float64 `toml:"overfunded" yaml:"overfunded" json:"overfunded"`
}

// Snapshot sizes the ranked lists embedded in a governance snapshot.
type Snapshot struct {
	TopCritical    int `toml:"top_critical" yaml:"top_critical" json:"top_critical"`
	TopKeystone    int `toml:"top_keystone" yaml:"top_keystone" json:"top_keystone"`
	TopUnderfunded int `toml:"top_underfunded" yaml:"top_underfunded" json:"top_underfunded"`
}

// Compare holds the noise tolerances used when judging the direction of a
// snapshot delta. A rate or HHI change no larger than its tolerance counts as
// neither an improvement nor a regression.
type Compare struct {
	RateTolerance float64 `toml:"rate_tolerance" yaml:"rate_tolerance" json:"rate_tolerance"`
	HHITolerance  float64 `toml:"hhi_tolerance" yaml:"hhi_tolerance" json:"hhi_tolerance"`
}

// Default returns the calibrated default configuration.
func Default() Config {
	return Config{
		Activity:    Activity{WindowDays: DefaultActiveWindowDays},
		Criticality: Criticality{DecayHalflifeDays: DefaultDecayHalflifeDays},
		Concentration: Concentration{
			PonyThreshold:   DefaultPonyThreshold,
			HHIModerate:     DefaultHHIModerate,
			HHIConcentrated: DefaultHHIConcentrated,
			HHICritical:     DefaultHHICritical,
		},
		Gate: Gate{
			CriticalityPercentile: DefaultGateCriticalityPercentile,
			HHIMax:                DefaultGateHHIMax,
			AdoptionPercentile:    DefaultGateAdoptionPercentile,
			Required:              DefaultGateRequired,
		},
		Debt: Debt{
			CriticalityPercentile: DefaultDebtCriticalityPercentile,
			HHIMin:                DefaultDebtHHIMin,
		},
		Trend: Trend{
			ActiveDays:   DefaultTrendActiveDays,
			StableDays:   DefaultTrendStableDays,
			StagnantDays: DefaultTrendStagnantDays,
		},
		Funding: Funding{
			CriticallyUnderfunded: DefaultFERCriticallyUnderfunded,
			Underfunded:           DefaultFERUnderfunded,
			Balanced:              DefaultFERBalanced,
			Overfunded:            DefaultFEROverfunded,
		},
		Snapshot: Snapshot{
			TopCritical:    DefaultTopCritical,
			TopKeystone:    DefaultTopKeystone,
			TopUnderfunded: DefaultTopUnderfunded,
		},
		Compare: Compare{
			RateTolerance: DefaultCompareRateTolerance,
			HHITolerance:  DefaultCompareHHITolerance,
		},
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that every threshold is in range and that ordered
// boundaries are strictly increasing (or decreasing, for funding tiers).
// Errors carry [errors.ErrCodeInvalidConfig].
func (c Config) Validate() error {
	if c.Activity.WindowDays <= 0 {
		return invalid("activity.window_days must be positive, got %d", c.Activity.WindowDays)
	}
	if c.Criticality.DecayHalflifeDays <= 0 {
		return invalid("criticality.decay_halflife_days must be positive, got %g", c.Criticality.DecayHalflifeDays)
	}

	cc := c.Concentration
	if cc.PonyThreshold <= 0 || cc.PonyThreshold > 1 {
		return invalid("concentration.pony_threshold must be in (0, 1], got %g", cc.PonyThreshold)
	}
	if !(0 < cc.HHIModerate && cc.HHIModerate < cc.HHIConcentrated &&
		cc.HHIConcentrated < cc.HHICritical && cc.HHICritical <= 10000) {
		return invalid("concentration HHI tiers must satisfy 0 < moderate < concentrated < critical <= 10000, got %g/%g/%g",
			cc.HHIModerate, cc.HHIConcentrated, cc.HHICritical)
	}

	g := c.Gate
	if err := percentile("gate.criticality_percentile", g.CriticalityPercentile); err != nil {
		return err
	}
	if err := percentile("gate.adoption_percentile", g.AdoptionPercentile); err != nil {
		return err
	}
	if g.HHIMax <= 0 || g.HHIMax > 10000 {
		return invalid("gate.hhi_max must be in (0, 10000], got %g", g.HHIMax)
	}
	if g.Required < 1 || g.Required > 3 {
		return invalid("gate.required must be between 1 and 3, got %d", g.Required)
	}

	if err := percentile("debt.criticality_percentile", c.Debt.CriticalityPercentile); err != nil {
		return err
	}
	if c.Debt.HHIMin < 0 || c.Debt.HHIMin > 10000 {
		return invalid("debt.hhi_min must be in [0, 10000], got %g", c.Debt.HHIMin)
	}

	t := c.Trend
	if !(0 < t.ActiveDays && t.ActiveDays < t.StableDays && t.StableDays < t.StagnantDays) {
		return invalid("trend bounds must satisfy 0 < active < stable < stagnant, got %d/%d/%d",
			t.ActiveDays, t.StableDays, t.StagnantDays)
	}

	f := c.Funding
	if !(f.CriticallyUnderfunded > f.Underfunded && f.Underfunded > f.Balanced &&
		f.Balanced > f.Overfunded && f.Overfunded > 0) {
		return invalid("funding tiers must satisfy critically_underfunded > underfunded > balanced > overfunded > 0, got %g/%g/%g/%g",
			f.CriticallyUnderfunded, f.Underfunded, f.Balanced, f.Overfunded)
	}

	s := c.Snapshot
	if s.TopCritical < 0 || s.TopKeystone < 0 || s.TopUnderfunded < 0 {
		return invalid("snapshot list sizes must not be negative")
	}

	if c.Compare.RateTolerance < 0 || c.Compare.RateTolerance >= 1 {
		return invalid("compare.rate_tolerance must be in [0, 1), got %g", c.Compare.RateTolerance)
	}
	if c.Compare.HHITolerance < 0 || c.Compare.HHITolerance >= 10000 {
		return invalid("compare.hhi_tolerance must be in [0, 10000), got %g", c.Compare.HHITolerance)
	}
	return nil
}

func percentile(name string, v float64) error {
	if v < 0 || v > 100 {
		return invalid("%s must be in [0, 100], got %g", name, v)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// Fingerprint returns a stable content hash of the configuration.
// Two configs with identical thresholds share a fingerprint.
func (c Config) Fingerprint() string {
	data, _ := json.Marshal(c)
	return cache.Hash(data)
}
