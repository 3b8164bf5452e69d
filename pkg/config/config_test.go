package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgatlas/pgatlas/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if cfg.Activity.WindowDays != 90 {
		t.Errorf("WindowDays = %d, want 90", cfg.Activity.WindowDays)
	}
	if cfg.Gate.Required != 2 {
		t.Errorf("Gate.Required = %d, want 2", cfg.Gate.Required)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Activity.WindowDays = 0 }},
		{"negative halflife", func(c *Config) { c.Criticality.DecayHalflifeDays = -1 }},
		{"pony above one", func(c *Config) { c.Concentration.PonyThreshold = 1.5 }},
		{"hhi tiers out of order", func(c *Config) { c.Concentration.HHIModerate = 3000 }},
		{"hhi critical above max", func(c *Config) { c.Concentration.HHICritical = 12000 }},
		{"gate percentile above 100", func(c *Config) { c.Gate.CriticalityPercentile = 101 }},
		{"gate required zero", func(c *Config) { c.Gate.Required = 0 }},
		{"gate required four", func(c *Config) { c.Gate.Required = 4 }},
		{"debt percentile negative", func(c *Config) { c.Debt.CriticalityPercentile = -5 }},
		{"trend out of order", func(c *Config) { c.Trend.StableDays = 10 }},
		{"funding out of order", func(c *Config) { c.Funding.Balanced = 1.5 }},
		{"funding overfunded zero", func(c *Config) { c.Funding.Overfunded = 0 }},
		{"negative top list", func(c *Config) { c.Snapshot.TopCritical = -1 }},
		{"negative rate tolerance", func(c *Config) { c.Compare.RateTolerance = -0.01 }},
		{"hhi tolerance too large", func(c *Config) { c.Compare.HHITolerance = 10000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestParseTOMLOverridesDefaults(t *testing.T) {
	data := []byte(`
[gate]
criticality_percentile = 60
required = 3

[concentration]
hhi_critical = 4500
`)
	cfg, err := Parse(data, FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Gate.CriticalityPercentile != 60 {
		t.Errorf("Gate.CriticalityPercentile = %v, want 60", cfg.Gate.CriticalityPercentile)
	}
	if cfg.Gate.Required != 3 {
		t.Errorf("Gate.Required = %v, want 3", cfg.Gate.Required)
	}
	if cfg.Concentration.HHICritical != 4500 {
		t.Errorf("HHICritical = %v, want 4500", cfg.Concentration.HHICritical)
	}
	if cfg.Gate.HHIMax != DefaultGateHHIMax {
		t.Errorf("Gate.HHIMax = %v, want default %v", cfg.Gate.HHIMax, DefaultGateHHIMax)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte("activity:\n  window_days: 120\ntrend:\n  stagnant_days: 100\n")
	cfg, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Activity.WindowDays != 120 {
		t.Errorf("WindowDays = %d, want 120", cfg.Activity.WindowDays)
	}
	if cfg.Trend.StagnantDays != 100 {
		t.Errorf("StagnantDays = %d, want 100", cfg.Trend.StagnantDays)
	}
}

func TestParseEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil, FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg != Default() {
		t.Error("Parse(empty) should equal Default()")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("[gate]\nthreshold = 3\n"), FormatTOML); err == nil {
		t.Error("Parse(toml unknown key) = nil, want error")
	}
	if _, err := Parse([]byte("gate:\n  threshold: 3\n"), FormatYAML); err == nil {
		t.Error("Parse(yaml unknown key) = nil, want error")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("[gate]\nrequired = 5\n"), FormatTOML)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgatlas.toml")
	if err := os.WriteFile(path, []byte("[debt]\nhhi_min = 3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Debt.HHIMin != 3000 {
		t.Errorf("Debt.HHIMin = %v, want 3000", cfg.Debt.HHIMin)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = Load(filepath.Join(dir, "config.json"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(.json) error = %v, want INVALID_FORMAT", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{FormatTOML, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(Default(), format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !strings.Contains(string(data), "window_days") {
				t.Errorf("Encode() output missing window_days:\n%s", data)
			}
			cfg, err := Parse(data, format)
			if err != nil {
				t.Fatalf("Parse(Encode()) error = %v", err)
			}
			if cfg != Default() {
				t.Error("Parse(Encode(Default())) != Default()")
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical configs should share a fingerprint")
	}
	b.Gate.Required = 3
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different configs should not share a fingerprint")
	}
}
