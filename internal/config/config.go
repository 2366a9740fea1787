// Package config loads the application settings from JSON. Every field is a
// pointer so a partial file overrides only what it names; the Get* accessors
// supply defaults for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/benefits-data/marginal.report/internal/household"
)

// DefaultConfigPath is the path to the canonical application defaults file.
// This is the single source of truth for all default settings.
const DefaultConfigPath = "config/app.defaults.json"

// Defaults applied when a field is absent from the config file.
const (
	DefaultEngineURL             = "https://api.policyengine.org/us"
	DefaultEngineTimeoutSeconds  = 60
	DefaultRequestTimeoutSeconds = 90
	DefaultMaxChildrenCap        = 10
)

// AppConfig is the root application configuration. The schema is flat so the
// same JSON works for the server and the offline sweep tool.
type AppConfig struct {
	// Engine connection
	EngineURL            *string `json:"engine_url,omitempty"`
	EngineTimeoutSeconds *int    `json:"engine_timeout_seconds,omitempty"`

	// Age policy for scenario translation
	DefaultAdultAge *int  `json:"default_adult_age,omitempty"`
	DefaultChildAge *int  `json:"default_child_age,omitempty"`
	StrictChildAges *bool `json:"strict_child_ages,omitempty"`

	SimulationYear *int `json:"simulation_year,omitempty"`

	// Sweep bounds used when a request or CLI run names none
	DefaultIncomeMin  *float64 `json:"default_income_min,omitempty"`
	DefaultIncomeMax  *float64 `json:"default_income_max,omitempty"`
	DefaultIncomeStep *float64 `json:"default_income_step,omitempty"`

	DefaultMaxChildren *int `json:"default_max_children,omitempty"`
	MaxChildrenCap     *int `json:"max_children_cap,omitempty"`

	RequestTimeoutSeconds *int `json:"request_timeout_seconds,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAppConfig returns an AppConfig with all fields set to nil. Use
// LoadConfig to load actual values from a file.
func EmptyAppConfig() *AppConfig {
	return &AppConfig{}
}

// LoadConfig loads an AppConfig from a JSON file. The file must have a .json
// extension and stay under the max file size. Fields omitted from the JSON
// keep their defaults, so partial configs are safe.
func LoadConfig(path string) (*AppConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAppConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AppConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *AppConfig) Validate() error {
	if c.EngineURL != nil {
		u, err := url.Parse(*c.EngineURL)
		if err != nil {
			return fmt.Errorf("invalid engine_url %q: %w", *c.EngineURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("engine_url must be http or https, got %q", *c.EngineURL)
		}
	}

	if c.EngineTimeoutSeconds != nil && *c.EngineTimeoutSeconds <= 0 {
		return fmt.Errorf("engine_timeout_seconds must be positive, got %d", *c.EngineTimeoutSeconds)
	}
	if c.RequestTimeoutSeconds != nil && *c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", *c.RequestTimeoutSeconds)
	}

	if c.DefaultAdultAge != nil {
		if *c.DefaultAdultAge < 18 || *c.DefaultAdultAge > 100 {
			return fmt.Errorf("default_adult_age must be between 18 and 100, got %d", *c.DefaultAdultAge)
		}
	}
	if c.DefaultChildAge != nil {
		if *c.DefaultChildAge < 0 || *c.DefaultChildAge > household.MaxChildAge {
			return fmt.Errorf("default_child_age must be between 0 and %d, got %d", household.MaxChildAge, *c.DefaultChildAge)
		}
	}

	if c.DefaultIncomeMin != nil && *c.DefaultIncomeMin < 0 {
		return fmt.Errorf("default_income_min must be non-negative, got %f", *c.DefaultIncomeMin)
	}
	if c.DefaultIncomeMin != nil && c.DefaultIncomeMax != nil && *c.DefaultIncomeMin > *c.DefaultIncomeMax {
		return fmt.Errorf("default_income_min %f exceeds default_income_max %f", *c.DefaultIncomeMin, *c.DefaultIncomeMax)
	}
	if c.DefaultIncomeStep != nil && *c.DefaultIncomeStep <= 0 {
		return fmt.Errorf("default_income_step must be positive, got %f", *c.DefaultIncomeStep)
	}

	if c.DefaultMaxChildren != nil && *c.DefaultMaxChildren < 0 {
		return fmt.Errorf("default_max_children must be non-negative, got %d", *c.DefaultMaxChildren)
	}
	if c.MaxChildrenCap != nil && *c.MaxChildrenCap < 0 {
		return fmt.Errorf("max_children_cap must be non-negative, got %d", *c.MaxChildrenCap)
	}

	return nil
}

// GetEngineURL returns the engine_url value or the default.
func (c *AppConfig) GetEngineURL() string {
	if c.EngineURL == nil || *c.EngineURL == "" {
		return DefaultEngineURL
	}
	return *c.EngineURL
}

// GetEngineTimeout returns the engine call timeout as a time.Duration.
func (c *AppConfig) GetEngineTimeout() time.Duration {
	if c.EngineTimeoutSeconds == nil || *c.EngineTimeoutSeconds <= 0 {
		return DefaultEngineTimeoutSeconds * time.Second
	}
	return time.Duration(*c.EngineTimeoutSeconds) * time.Second
}

// GetRequestTimeout returns the whole-run timeout as a time.Duration.
func (c *AppConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds == nil || *c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeoutSeconds * time.Second
	}
	return time.Duration(*c.RequestTimeoutSeconds) * time.Second
}

// GetDefaultAdultAge returns the default_adult_age value or the default.
func (c *AppConfig) GetDefaultAdultAge() int {
	if c.DefaultAdultAge == nil {
		return household.DefaultAdultAge
	}
	return *c.DefaultAdultAge
}

// GetDefaultChildAge returns the default_child_age value or the default.
func (c *AppConfig) GetDefaultChildAge() int {
	if c.DefaultChildAge == nil {
		return household.DefaultChildAge
	}
	return *c.DefaultChildAge
}

// GetStrictChildAges returns the strict_child_ages value or the default.
func (c *AppConfig) GetStrictChildAges() bool {
	if c.StrictChildAges == nil {
		return false
	}
	return *c.StrictChildAges
}

// GetAgePolicy assembles the scenario age policy from the age fields.
func (c *AppConfig) GetAgePolicy() household.AgePolicy {
	return household.AgePolicy{
		AdultAge: c.GetDefaultAdultAge(),
		ChildAge: c.GetDefaultChildAge(),
		Strict:   c.GetStrictChildAges(),
	}
}

// GetSimulationYear returns the simulation_year value or the default.
func (c *AppConfig) GetSimulationYear() int {
	if c.SimulationYear == nil {
		return household.DefaultYear
	}
	return *c.SimulationYear
}

// GetDefaultIncomeMin returns the default_income_min value or the default.
func (c *AppConfig) GetDefaultIncomeMin() float64 {
	if c.DefaultIncomeMin == nil {
		return household.DefaultIncomeMin
	}
	return *c.DefaultIncomeMin
}

// GetDefaultIncomeMax returns the default_income_max value or the default.
func (c *AppConfig) GetDefaultIncomeMax() float64 {
	if c.DefaultIncomeMax == nil {
		return household.DefaultIncomeMax
	}
	return *c.DefaultIncomeMax
}

// GetDefaultIncomeStep returns the default_income_step value or the default.
func (c *AppConfig) GetDefaultIncomeStep() float64 {
	if c.DefaultIncomeStep == nil {
		return household.DefaultIncomeStep
	}
	return *c.DefaultIncomeStep
}

// GetDefaultMaxChildren returns the default_max_children value or the default.
func (c *AppConfig) GetDefaultMaxChildren() int {
	if c.DefaultMaxChildren == nil {
		return household.DefaultMaxChildren
	}
	return *c.DefaultMaxChildren
}

// GetMaxChildrenCap returns the max_children_cap value or the default.
func (c *AppConfig) GetMaxChildrenCap() int {
	if c.MaxChildrenCap == nil {
		return DefaultMaxChildrenCap
	}
	return *c.MaxChildrenCap
}
