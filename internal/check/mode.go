package check

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kriansa/check-mount/internal/validation"
)

// ConfigError reports invalid or conflicting options. It is raised before
// the mount table is consulted.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// Mode selects how mounts are evaluated. It is either AggregateCount or ByPath.
type Mode interface {
	isMode()
}

// AggregateCount evaluates the total number of matching mounts. An empty
// Types means every type not in the ignore list.
type AggregateCount struct {
	Types []string
}

// ByPath evaluates each requested mount point on its own
type ByPath struct {
	Paths []string
}

func (AggregateCount) isMode() {}
func (ByPath) isMode() {}

// NewMode builds the mode from the --path and --type options, which are
// mutually exclusive
func NewMode(paths, types []string) (Mode, error) {
	if len(paths) > 0 && len(types) > 0 {
		return nil, configErrorf("--path and --type cannot be specified together")
	}

	if len(paths) > 0 {
		var errs []error
		for _, p := range paths {
			if err := validation.ValidateMountPath(p); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return nil, &ConfigError{Err: errors.Join(errs...)}
		}
		return ByPath{Paths: append([]string(nil), paths...)}, nil
	}

	seen := make(map[string]bool, len(types))
	var normalized []string
	for _, t := range types {
		if err := validation.ValidateFSType(t); err != nil {
			return nil, &ConfigError{Err: err}
		}
		t = strings.ToLower(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}

	return AggregateCount{Types: normalized}, nil
}
