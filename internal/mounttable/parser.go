package mounttable

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kriansa/check-mount/internal/log"
)

var (
	// <device> on <path> type <fstype> (<options>)
	linuxLine = regexp.MustCompile(`^(.+?) on (.+) type (\S+) \((.*)\)$`)
	// <device> on <path> (<fstype>, <options>)
	bsdLine = regexp.MustCompile(`^(.+?) on (.+) \(([^,()]+)(?:, (.*))?\)$`)
)

// ParseMountOutput parses the output of mount(8) run without arguments.
// Both the Linux and the BSD/macOS line layouts are understood. Lines that
// match neither are skipped and counted.
func ParseMountOutput(output string) (Table, error) {
	return parse(strings.NewReader(output), parseMountLine)
}

// ParseProcMounts parses the /proc/mounts (fstab-like) format
func ParseProcMounts(r io.Reader) (Table, error) {
	return parse(r, parseProcLine)
}

func parse(r io.Reader, parseLine func(string) (Record, bool)) (Table, error) {
	var table Table
	lines := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		rec, ok := parseLine(line)
		if !ok {
			table.Skipped++
			log.Debug("skipping unparseable mount line", "line", line)
			continue
		}

		log.Debug("found mount", "device", rec.Device, "path", rec.Path, "type", rec.FSType)
		table.Records = append(table.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return Table{}, fmt.Errorf("read mount table: %w", err)
	}

	if lines > 0 && len(table.Records) == 0 {
		return Table{}, &ParseError{Lines: lines}
	}

	return table, nil
}

func parseMountLine(line string) (Record, bool) {
	if m := linuxLine.FindStringSubmatch(line); m != nil {
		return Record{
			Device:  m[1],
			Path:    m[2],
			FSType:  m[3],
			Options: splitOptions(m[4]),
		}, true
	}

	if m := bsdLine.FindStringSubmatch(line); m != nil {
		return Record{
			Device:  m[1],
			Path:    m[2],
			FSType:  strings.TrimSpace(m[3]),
			Options: splitOptions(m[4]),
		}, true
	}

	return Record{}, false
}

// splitOptions accepts both "rw,relatime" (Linux) and "local, journaled" (BSD)
func splitOptions(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	opts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return opts
}

func parseProcLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Record{}, false
	}

	return Record{
		Device:  unescapeField(fields[0]),
		Path:    unescapeField(fields[1]),
		FSType:  fields[2],
		Options: splitOptions(fields[3]),
	}, true
}

// unescapeField unescapes special characters in mount fields
// /proc/mounts escapes spaces as \040, tabs as \011, etc.
func unescapeField(s string) string {
	return procEscapes.Replace(s)
}

var procEscapes = strings.NewReplacer(
	`\040`, " ",
	`\011`, "\t",
	`\012`, "\n",
	`\134`, `\`,
)
