package profile

import (
	"time"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/config"
)

// Profile is a named analysis preset (exchange, mode, periods, outputs)
type Profile struct {
	Meta     Meta    `yaml:"meta" json:"meta"`
	Exchange string  `yaml:"exchange" json:"exchange"`
	Mode     string  `yaml:"mode" json:"mode"`
	Policy   string  `yaml:"policy" json:"policy"`
	Calendar string  `yaml:"calendar" json:"calendar"`
	Periods  Periods `yaml:"periods" json:"periods"`
	Output   Output  `yaml:"output" json:"output"`
	Workers  int     `yaml:"workers" json:"workers"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID   string `yaml:"profile_id" json:"profile_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Periods holds the base and compare windows
type Periods struct {
	Base    contracts.Period `yaml:"base" json:"base"`
	Compare contracts.Period `yaml:"compare" json:"compare"`
}

// Output 출력 설정
type Output struct {
	Dir     string   `yaml:"dir" json:"dir"`
	Formats []string `yaml:"formats" json:"formats"`
}

// Snapshot records which profile drove a run
type Snapshot struct {
	ProfileHash string    `json:"profile_hash"`
	ProfileYAML string    `json:"profile_yaml"`
	ProfileID   string    `json:"profile_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Apply overlays the profile onto cfg. Empty profile fields keep cfg's value.
// The profile's policy applies to its own mode only.
func (p *Profile) Apply(cfg *config.Config) {
	if p.Exchange != "" {
		cfg.Exchange.Name = p.Exchange
	}
	if p.Mode != "" {
		cfg.Analysis.Mode = p.Mode
	}
	if p.Policy != "" {
		if mode, err := contracts.ParseMode(cfg.Analysis.Mode); err == nil && mode == contracts.ModeMax {
			cfg.Analysis.HighPolicy = p.Policy
		} else {
			cfg.Analysis.LowPolicy = p.Policy
		}
	}
	if p.Calendar != "" {
		cfg.Analysis.Calendar = p.Calendar
	}
	if p.Periods.Base.Start != "" {
		cfg.Analysis.BaseStart = p.Periods.Base.Start.String()
		cfg.Analysis.BaseEnd = p.Periods.Base.End.String()
	}
	if p.Periods.Compare.Start != "" {
		cfg.Analysis.CompareStart = p.Periods.Compare.Start.String()
		cfg.Analysis.CompareEnd = p.Periods.Compare.End.String()
	}
	if p.Output.Dir != "" {
		cfg.Analysis.OutputDir = p.Output.Dir
	}
	if len(p.Output.Formats) > 0 {
		cfg.Analysis.OutputFormats = p.Output.Formats
	}
	if p.Workers > 0 {
		cfg.Analysis.Workers = p.Workers
	}
}
