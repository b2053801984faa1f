// Package rules implements the signal conditions and the arbitration
// pipeline that merges their results into one composite per window step.
package rules

import (
	"context"

	"FundFlow/internal/domain/models"
)

// Rule evaluates one condition against a window. Check is total: missing
// fields or short windows yield an untriggered signal, never an error.
// Windows are most-recent-first; window[0] is the step under evaluation.
type Rule interface {
	Check(ctx context.Context, window models.Window) models.Signal
	Priority() int
	Description() string
}
