package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/mounttable"
)

// defaultIgnoredTypes are pseudo filesystems left out of aggregate counts
// unless explicitly requested with --type
var defaultIgnoredTypes = []string{
	"autofs",
	"bpf",
	"cgroup",
	"cgroup2",
	"debugfs",
	"devpts",
	"devtmpfs",
	"hugetlbfs",
	"mqueue",
	"proc",
	"pstore",
	"securityfs",
	"sysfs",
	"tmpfs",
}

// IgnoreList is an immutable set of filesystem types
type IgnoreList struct {
	types map[string]struct{}
}

// NewIgnoreList builds an ignore list from type names (case-insensitive)
func NewIgnoreList(types ...string) IgnoreList {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(t)] = struct{}{}
	}
	return IgnoreList{types: set}
}

// DefaultIgnoreList returns the built-in list of pseudo filesystem types
func DefaultIgnoreList() IgnoreList {
	return NewIgnoreList(defaultIgnoredTypes...)
}

// DefaultIgnoredTypes returns a copy of the built-in ignored type names
func DefaultIgnoredTypes() []string {
	return slices.Clone(defaultIgnoredTypes)
}

// Contains reports whether fsType is ignored
func (l IgnoreList) Contains(fsType string) bool {
	_, ok := l.types[strings.ToLower(fsType)]
	return ok
}

// Count is the outcome of an aggregate count
type Count struct {
	Total int
	// Counted holds the records that contributed to Total, in table order
	Counted []mounttable.Record
}

// CountMounts counts records in AggregateCount mode. With requested types,
// only those types are counted and the ignore list does not apply to them.
// Without, every type outside the ignore list is counted.
func CountMounts(records []mounttable.Record, types []string, ignore IgnoreList) Count {
	requested := make(map[string]struct{}, len(types))
	for _, t := range types {
		requested[strings.ToLower(t)] = struct{}{}
	}

	var c Count
	for _, rec := range records {
		fsType := strings.ToLower(rec.FSType)

		if len(requested) > 0 {
			if _, ok := requested[fsType]; !ok {
				log.Debug("ignoring mount: not in requested types", "path", rec.Path, "type", rec.FSType)
				continue
			}
		} else if ignore.Contains(fsType) {
			log.Debug("ignoring mount: type in ignore list", "path", rec.Path, "type", rec.FSType)
			continue
		}

		log.Debug("mount counted", "path", rec.Path, "type", rec.FSType)
		c.Total++
		c.Counted = append(c.Counted, rec)
	}

	return c
}

// PathCount is the presence of one requested mount point
type PathCount struct {
	Path  string
	Count int
	// Types are the filesystem types mounted at Path, in table order
	Types []string
}

// Present reports whether anything is mounted at the path
func (p PathCount) Present() bool {
	return p.Count > 0
}

// CountByPath counts exact mount point matches for each requested path.
// Order and duplicates of paths are preserved.
func CountByPath(records []mounttable.Record, paths []string) []PathCount {
	result := make([]PathCount, 0, len(paths))
	for _, path := range paths {
		pc := PathCount{Path: path}
		for _, rec := range records {
			if rec.Path == path {
				pc.Count++
				pc.Types = append(pc.Types, rec.FSType)
			}
		}

		if pc.Present() {
			log.Debug("mount present", "path", path, "count", pc.Count)
		} else {
			log.Debug("mount missing", "path", path)
		}
		result = append(result, pc)
	}
	return result
}

func (p PathCount) detail() string {
	switch p.Count {
	case 0:
		return fmt.Sprintf("%s: not mounted", p.Path)
	case 1:
		return fmt.Sprintf("%s: mounted (%s)", p.Path, p.Types[0])
	default:
		return fmt.Sprintf("%s: mounted %d times (%s)", p.Path, p.Count, strings.Join(p.Types, ", "))
	}
}
