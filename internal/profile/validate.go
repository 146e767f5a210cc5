package profile

import (
	"fmt"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/export"
	"github.com/wonny/extremes/internal/extremes"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(p *Profile) error {
	// === Meta ===
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	switch p.Exchange {
	case "", "twse", "tpex":
	default:
		return ValidationError{"exchange", "must be twse or tpex"}
	}

	mode := contracts.ModeMin
	if p.Mode != "" {
		m, err := contracts.ParseMode(p.Mode)
		if err != nil {
			return ValidationError{"mode", err.Error()}
		}
		mode = m
	}

	if p.Policy != "" {
		if _, err := extremes.ParsePolicy(p.Policy, mode); err != nil {
			return ValidationError{"policy", err.Error()}
		}
	}

	switch p.Calendar {
	case "", "weekday", "exchange":
	default:
		return ValidationError{"calendar", "must be weekday or exchange"}
	}

	// === Periods ===
	if err := validatePeriod(p.Periods.Base); err != nil {
		return ValidationError{"periods.base", err.Error()}
	}
	if err := validatePeriod(p.Periods.Compare); err != nil {
		return ValidationError{"periods.compare", err.Error()}
	}

	// === Output ===
	for _, f := range p.Output.Formats {
		if export.NewWriter(f) == nil {
			return ValidationError{"output.formats", fmt.Sprintf("unsupported format %q", f)}
		}
	}

	if p.Workers < 0 {
		return ValidationError{"workers", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(p *Profile) []Warning {
	var warnings []Warning

	base, compare := p.Periods.Base, p.Periods.Compare
	if base.Start == "" || compare.Start == "" {
		return warnings
	}

	// 비교 구간이 기준 구간과 겹침
	if compare.Start <= base.End && base.Start <= compare.End {
		warnings = append(warnings, Warning{
			Code:    "OVERLAPPING_PERIODS",
			Message: "compare period overlaps the base period",
		})
	}

	// 비교 구간이 기준 구간보다 앞섬
	if compare.End < base.Start {
		warnings = append(warnings, Warning{
			Code:    "COMPARE_BEFORE_BASE",
			Message: "compare period ends before the base period starts",
		})
	}

	return warnings
}

// validatePeriod accepts an omitted period or a complete, ordered one
func validatePeriod(period contracts.Period) error {
	if period.Start == "" && period.End == "" {
		return nil
	}
	return period.Validate()
}
