package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/leaguetable/internal/league"
)

const (
	defaultDatabase   = "league.db"
	defaultFormLength = league.DefaultFormLength
)

type League struct {
	Name       string `yaml:"name"`
	Owner      string `yaml:"owner"`
	MaxSeasons int    `yaml:"max_seasons"`
}

type Division struct {
	Name          string   `yaml:"name"`
	NumberOfTeams int      `yaml:"number_of_teams"`
	Promoted      int      `yaml:"promoted"`
	Relegated     int      `yaml:"relegated"`
	Teams         []string `yaml:"teams"`
}

type Config struct {
	League          League     `yaml:"league"`
	Database        string     `yaml:"database"`
	FormLength      int        `yaml:"form_length"`
	ShuffleFixtures bool       `yaml:"shuffle_fixtures"`
	Seed            int64      `yaml:"seed"`
	Divisions       []Division `yaml:"divisions"`
}

// AllTeams returns all team names across all divisions.
func (c *Config) AllTeams() []string {
	var teams []string
	for _, d := range c.Divisions {
		teams = append(teams, d.Teams...)
	}
	return teams
}

// DivisionSpecs converts the divisions, top first, into league set-up specs.
func (c *Config) DivisionSpecs() []league.DivisionSpec {
	specs := make([]league.DivisionSpec, len(c.Divisions))
	for i, d := range c.Divisions {
		specs[i] = league.DivisionSpec{
			Name:          d.Name,
			NumberOfTeams: d.NumberOfTeams,
			Promote:       d.Promoted,
			Relegate:      d.Relegated,
			Teams:         d.Teams,
		}
	}
	return specs
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	if c.FormLength == 0 {
		c.FormLength = defaultFormLength
	}
	// The top division has nowhere to be promoted to and the bottom
	// division nowhere to be relegated to.
	if n := len(c.Divisions); n > 0 {
		c.Divisions[0].Promoted = 0
		c.Divisions[n-1].Relegated = 0
	}
}

func (c *Config) validate() error {
	if c.League.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if c.League.Owner == "" {
		return fmt.Errorf("league owner is required")
	}
	if c.League.MaxSeasons < 1 {
		return fmt.Errorf("max_seasons must be at least 1, got %d", c.League.MaxSeasons)
	}
	if c.FormLength < 1 {
		return fmt.Errorf("form_length must be at least 1, got %d", c.FormLength)
	}

	if len(c.Divisions) == 0 {
		return fmt.Errorf("at least one division is required")
	}

	// Check for duplicate division and team names
	divisions := make(map[string]bool)
	seen := make(map[string]string)
	for _, div := range c.Divisions {
		if div.Name == "" {
			return fmt.Errorf("every division needs a name")
		}
		key := strings.ToLower(div.Name)
		if divisions[key] {
			return fmt.Errorf("division %q appears more than once", div.Name)
		}
		divisions[key] = true
		for _, team := range div.Teams {
			if prevDiv, ok := seen[team]; ok {
				return fmt.Errorf("team %q appears in both %q and %q divisions", team, prevDiv, div.Name)
			}
			seen[team] = div.Name
		}
	}

	return league.CheckLadder(c.DivisionSpecs())
}
