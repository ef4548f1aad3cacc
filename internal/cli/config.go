package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakmere/catchment/internal/request"
)

// DefaultConfigPath is loaded when it exists and --config is not given.
const DefaultConfigPath = "config.yaml"

// Settings is one block of search parameters from the config file.
// Pointer fields distinguish "not set" from a zero value, so each layer
// of the merge only overrides what it actually specifies.
type Settings struct {
	Postcode          *string  `yaml:"postcode"`
	RadiusMiles       *float64 `yaml:"radius"`
	Status            *string  `yaml:"status"`
	AccountCategories []string `yaml:"account_categories"`
	SICCodes          []int    `yaml:"sic_codes"`
	MinCompanyAge     *int     `yaml:"min_company_age"`
	MaxCompanyAge     *int     `yaml:"max_company_age"`
	MinPSCAge         *int     `yaml:"min_psc_age"`
	MaxPSCAge         *int     `yaml:"max_psc_age"`
	MinPSCTenure      *int     `yaml:"min_psc_tenure"`
	MaxPSCTenure      *int     `yaml:"max_psc_tenure"`
	StrictPSCTenure   *bool    `yaml:"strict_psc_tenure"`
	Format            *string  `yaml:"format"`
	MaxResults        *int64   `yaml:"max_results"`
}

// Config is the on-disk layout: shared defaults plus named profiles.
// Merge order is defaults, then profile, then command-line flags.
type Config struct {
	Defaults Settings            `yaml:"defaults"`
	Profiles map[string]Settings `yaml:"profiles"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve overlays the named profile on the defaults. An empty profile
// name returns the defaults alone; an unknown name is an error listing
// the available profiles.
func (c *Config) Resolve(profile string) (Settings, error) {
	merged := c.Defaults
	if profile == "" {
		return merged, nil
	}
	p, ok := c.Profiles[profile]
	if !ok {
		return Settings{}, fmt.Errorf("unknown profile %q (available: %s)",
			profile, strings.Join(c.ProfileNames(), ", "))
	}
	merged.overlay(p)
	return merged, nil
}

// ProfileNames returns the defined profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Settings) overlay(over Settings) {
	if over.Postcode != nil {
		s.Postcode = over.Postcode
	}
	if over.RadiusMiles != nil {
		s.RadiusMiles = over.RadiusMiles
	}
	if over.Status != nil {
		s.Status = over.Status
	}
	if over.AccountCategories != nil {
		s.AccountCategories = over.AccountCategories
	}
	if over.SICCodes != nil {
		s.SICCodes = over.SICCodes
	}
	if over.MinCompanyAge != nil {
		s.MinCompanyAge = over.MinCompanyAge
	}
	if over.MaxCompanyAge != nil {
		s.MaxCompanyAge = over.MaxCompanyAge
	}
	if over.MinPSCAge != nil {
		s.MinPSCAge = over.MinPSCAge
	}
	if over.MaxPSCAge != nil {
		s.MaxPSCAge = over.MaxPSCAge
	}
	if over.MinPSCTenure != nil {
		s.MinPSCTenure = over.MinPSCTenure
	}
	if over.MaxPSCTenure != nil {
		s.MaxPSCTenure = over.MaxPSCTenure
	}
	if over.StrictPSCTenure != nil {
		s.StrictPSCTenure = over.StrictPSCTenure
	}
	if over.Format != nil {
		s.Format = over.Format
	}
	if over.MaxResults != nil {
		s.MaxResults = over.MaxResults
	}
}

// Apply copies every set field onto the request.
func (s Settings) Apply(req *request.SearchRequest) {
	if s.Postcode != nil {
		req.Postcode = *s.Postcode
	}
	if s.RadiusMiles != nil {
		req.RadiusMiles = *s.RadiusMiles
	}
	if s.Status != nil {
		req.Status = *s.Status
	}
	if s.AccountCategories != nil {
		req.AccountCategories = s.AccountCategories
	}
	if s.SICCodes != nil {
		req.SICCodes = s.SICCodes
	}
	if s.MinCompanyAge != nil {
		req.MinCompanyAgeYears = s.MinCompanyAge
	}
	if s.MaxCompanyAge != nil {
		req.MaxCompanyAgeYears = s.MaxCompanyAge
	}
	if s.MinPSCAge != nil {
		req.MinPSCAge = s.MinPSCAge
	}
	if s.MaxPSCAge != nil {
		req.MaxPSCAge = s.MaxPSCAge
	}
	if s.MinPSCTenure != nil {
		req.MinPSCTenureYears = s.MinPSCTenure
	}
	if s.MaxPSCTenure != nil {
		req.MaxPSCTenureYears = s.MaxPSCTenure
	}
	if s.StrictPSCTenure != nil {
		req.StrictPSCTenure = *s.StrictPSCTenure
	}
	if s.Format != nil {
		req.Format = request.OutputFormat(*s.Format)
	}
	if s.MaxResults != nil {
		req.MaxResults = *s.MaxResults
	}
}
