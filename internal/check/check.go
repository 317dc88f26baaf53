// Package check decides the plugin state from a mount table: it counts
// mounts by type or looks up requested mount points, and applies the
// warning and critical ranges.
package check

import (
	"context"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/source"
)

// Checker runs one mount check
type Checker struct {
	source     source.Source
	mode       Mode
	thresholds Thresholds
	ignore     IgnoreList
}

// NewChecker creates a checker reading mounts from src
func NewChecker(src source.Source, mode Mode, th Thresholds, ignore IgnoreList) *Checker {
	return &Checker{
		source:     src,
		mode:       mode,
		thresholds: th,
		ignore:     ignore,
	}
}

// Run obtains the mount table and evaluates it. Failures to obtain or parse
// the table yield an UNKNOWN result.
func (c *Checker) Run(ctx context.Context) Result {
	table, err := c.source.Mounts(ctx)
	if err != nil {
		log.Debug("cannot obtain mount table", "error", err)
		return UnknownResult(err)
	}

	if table.Skipped > 0 {
		log.Info("unparseable mount lines skipped", "count", table.Skipped)
	}

	result := Evaluate(c.mode, table.Records, c.thresholds, c.ignore)
	log.Info("check complete", "status", result.Status.String(), "mounts", len(table.Records))
	return result
}
