package contracts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunInfo identifies one analysis run
type RunInfo struct {
	ID        uuid.UUID `json:"run_id"`
	Exchange  string    `json:"exchange"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"started_at"`
}

// Period is an inclusive date window
type Period struct {
	Start TradingDate `json:"start" yaml:"start"`
	End   TradingDate `json:"end" yaml:"end"`
}

// Contains reports start <= d <= end
func (p Period) Contains(d TradingDate) bool {
	return d >= p.Start && d <= p.End
}

// Validate checks both ends parse and start <= end
func (p Period) Validate() error {
	if _, err := ParseTradingDate(string(p.Start)); err != nil {
		return err
	}
	if _, err := ParseTradingDate(string(p.End)); err != nil {
		return err
	}
	if p.End < p.Start {
		return fmt.Errorf("period end %s before start %s", p.End, p.Start)
	}
	return nil
}
