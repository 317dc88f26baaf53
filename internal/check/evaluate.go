package check

import (
	"fmt"
	"strings"

	"github.com/kriansa/check-mount/internal/mounttable"
	"github.com/kriansa/check-mount/internal/threshold"
)

// Thresholds holds the warning and critical ranges; either may be nil
type Thresholds struct {
	Warning  *threshold.Range
	Critical *threshold.Range
}

// ParseThresholds parses the --warning and --critical options. When neither
// is given the configured defaults are used instead.
func ParseThresholds(warning, critical, defaultWarning, defaultCritical string) (Thresholds, error) {
	if warning == "" && critical == "" {
		warning, critical = defaultWarning, defaultCritical
	}

	var th Thresholds
	if warning != "" {
		r, err := threshold.Parse(warning)
		if err != nil {
			return Thresholds{}, &ConfigError{Err: fmt.Errorf("warning: %w", err)}
		}
		th.Warning = &r
	}
	if critical != "" {
		r, err := threshold.Parse(critical)
		if err != nil {
			return Thresholds{}, &ConfigError{Err: fmt.Errorf("critical: %w", err)}
		}
		th.Critical = &r
	}

	return th, nil
}

// evaluate checks critical first, then warning. The returned range is the
// one that fired, nil when OK.
func (t Thresholds) evaluate(value int64) (Status, *threshold.Range) {
	if t.Critical != nil && t.Critical.Excludes(value) {
		return Critical, t.Critical
	}
	if t.Warning != nil && t.Warning.Excludes(value) {
		return Warning, t.Warning
	}
	return OK, nil
}

func (t Thresholds) perfdata(label string, value int) string {
	var warn, crit string
	if t.Warning != nil {
		warn = t.Warning.String()
	}
	if t.Critical != nil {
		crit = t.Critical.String()
	}
	return fmt.Sprintf("%s=%d;%s;%s;0", perfLabel(label), value, warn, crit)
}

// perfLabel quotes a perfdata label when it contains characters the plugin
// API reserves
func perfLabel(label string) string {
	if !strings.ContainsAny(label, " \t='") {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}

func violation(status Status, r *threshold.Range) string {
	where := "outside"
	if r.Inverted {
		where = "inside"
	}
	return fmt.Sprintf("%s %s range %s", where, strings.ToLower(status.String()), r)
}

// Result is the outcome of one check run
type Result struct {
	Status  Status
	Message string
	// Details are per-item findings, shown as long output when verbose
	Details []string
	// Perfdata are performance data items in Nagios plugin API format
	Perfdata []string
}

// Render formats the result for stdout: one status line, followed by the
// details when verbosity is at least 1
func (r Result) Render(verbosity int) string {
	var b strings.Builder
	b.WriteString(r.Status.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	if len(r.Perfdata) > 0 {
		b.WriteString(" | ")
		b.WriteString(strings.Join(r.Perfdata, " "))
	}
	b.WriteByte('\n')

	if verbosity >= 1 {
		for _, d := range r.Details {
			b.WriteString(d)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// UnknownResult maps an error to an UNKNOWN result
func UnknownResult(err error) Result {
	return Result{Status: Unknown, Message: err.Error()}
}

// Evaluate applies the thresholds to the mount records according to mode
func Evaluate(mode Mode, records []mounttable.Record, th Thresholds, ignore IgnoreList) Result {
	switch m := mode.(type) {
	case AggregateCount:
		return evaluateCount(m, records, th, ignore)
	case ByPath:
		return evaluatePaths(m, records, th)
	default:
		return UnknownResult(fmt.Errorf("unsupported mode %T", mode))
	}
}

func evaluateCount(m AggregateCount, records []mounttable.Record, th Thresholds, ignore IgnoreList) Result {
	count := CountMounts(records, m.Types, ignore)
	status, fired := th.evaluate(int64(count.Total))

	msg := fmt.Sprintf("%d mounts found", count.Total)
	if len(m.Types) > 0 {
		msg += " of type " + strings.Join(m.Types, ", ")
	}
	if fired != nil {
		msg += " (" + violation(status, fired) + ")"
	}

	details := make([]string, 0, len(count.Counted))
	for _, rec := range count.Counted {
		details = append(details, fmt.Sprintf("%s: mounted (%s)", rec.Path, rec.FSType))
	}

	return Result{
		Status:   status,
		Message:  msg,
		Details:  details,
		Perfdata: []string{th.perfdata("mounts", count.Total)},
	}
}

func evaluatePaths(m ByPath, records []mounttable.Record, th Thresholds) Result {
	counts := CountByPath(records, m.Paths)

	overall := OK
	parts := make([]string, 0, len(counts))
	details := make([]string, 0, len(counts))
	perfdata := make([]string, 0, len(counts))

	for _, pc := range counts {
		status, fired := th.evaluate(int64(pc.Count))
		overall = worst(overall, status)

		part := pc.Path + ": missing"
		if pc.Present() {
			part = pc.Path + ": present"
		}
		if fired != nil && pc.Present() {
			part += fmt.Sprintf(" (%d mounts, %s)", pc.Count, violation(status, fired))
		}

		parts = append(parts, part)
		details = append(details, pc.detail())
		perfdata = append(perfdata, th.perfdata(pc.Path, pc.Count))
	}

	return Result{
		Status:   overall,
		Message:  strings.Join(parts, ", "),
		Details:  details,
		Perfdata: perfdata,
	}
}
