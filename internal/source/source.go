package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kriansa/check-mount/internal/mounttable"
)

// Source provides the current mount table
type Source interface {
	// Mounts returns the mount table, in the order the OS reports it
	Mounts(ctx context.Context) (mounttable.Table, error)
}

// Options configures the sources built by New
type Options struct {
	// MountCommand is the mount(8) binary used by the command source
	MountCommand string
	// ProcMounts is the mounts file read by the proc source
	ProcMounts string
	// Timeout bounds the time spent obtaining the mount table
	Timeout time.Duration
}

// ErrTimeout is returned when the mount table could not be obtained in time
var ErrTimeout = errors.New("timed out")

// New creates a Source for the specified backend
func New(backend string, opts Options) (Source, error) {
	switch backend {
	case "command":
		return NewCommand(opts.MountCommand, opts.Timeout), nil
	case "proc":
		return NewProc(opts.ProcMounts), nil
	case "systemd":
		return NewSystemd(opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown source: %s (use 'command', 'proc' or 'systemd')", backend)
	}
}

// withTimeout derives a context bounded by timeout; zero means no bound
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
