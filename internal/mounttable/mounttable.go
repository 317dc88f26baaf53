package mounttable

import "fmt"

// Record represents one mounted filesystem
type Record struct {
	// Device is the mounted source (block device, remote share, pseudo name)
	Device string
	// Path is the mount point
	Path string
	// FSType is the filesystem type as reported by the OS
	FSType string
	// Options are the mount options, in the order reported
	Options []string
}

// Table is the result of parsing a mount listing
type Table struct {
	Records []Record
	// Skipped counts non-blank lines that could not be parsed
	Skipped int
}

// ParseError is returned when a non-empty listing has no parseable line at all
type ParseError struct {
	Lines int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized mount table format: none of %d lines could be parsed", e.Lines)
}
