package source

import (
	"context"
	"fmt"
	"os"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/mounttable"
)

// DefaultProcMounts is the kernel's view of the calling process' mounts
const DefaultProcMounts = "/proc/self/mounts"

// Proc lists mounts by reading a /proc/mounts style file
type Proc struct {
	path string
}

// NewProc creates a proc source reading path
func NewProc(path string) *Proc {
	if path == "" {
		path = DefaultProcMounts
	}
	return &Proc{path: path}
}

// Mounts reads and parses the mounts file
func (p *Proc) Mounts(_ context.Context) (mounttable.Table, error) {
	log.Debug("reading mount table", "path", p.path)

	file, err := os.Open(p.path)
	if err != nil {
		return mounttable.Table{}, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer file.Close()

	table, err := mounttable.ParseProcMounts(file)
	if err != nil {
		return mounttable.Table{}, fmt.Errorf("parse %s: %w", p.path, err)
	}

	return table, nil
}
