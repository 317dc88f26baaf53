package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kriansa/check-mount/internal/check"
	"github.com/kriansa/check-mount/internal/config"
	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/source"
	"github.com/kriansa/check-mount/internal/version"
)

const maxVerbosity = 3

func main() {
	os.Exit(execute(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// execute runs the plugin and returns its exit code. Exactly one status line
// is written to stdout, except for --help and --version.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		verbosity int
		result    *check.Result
	)

	cmd := &cli.Command{
		Name:  "check-mount",
		Usage: "Nagios/Icinga plugin checking that mount points are present",
		Description: `Count mounts (optionally of given types) or look up specific mount points,
and compare the result with the warning and critical ranges.

Insist on 15 mounts being present:           check-mount -w15:15
                                             check-mount -c15:15
Between 3 and 5 mounts of type nfs or ext4:  check-mount -t nfs -t ext4 -w 3:5
Exactly one mount at each of three paths:    check-mount -p /home -p /var -p /opt -w1:1`,
		Writer:                    stdout,
		ErrWriter:                 stderr,
		UseShortOptionHandling:    true,
		DisableSliceFlagSeparator: true,
		HideHelpCommand:           true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "warning",
				Aliases: []string{"w"},
				Usage:   "Generate warning state if the number of mounts is outside `RANGE`",
			},
			&cli.StringFlag{
				Name:    "critical",
				Aliases: []string{"c"},
				Usage:   "Generate critical state if the number of mounts is outside `RANGE`",
			},
			&cli.StringSliceFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "A mount point that must be present; may be repeated (incompatible with --type)",
			},
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Only count mounts of this filesystem type; may be repeated (incompatible with --path)",
			},
			&cli.StringFlag{
				Name:    "mount-path",
				Aliases: []string{"M"},
				Usage:   fmt.Sprintf("Override the path to mount(8) (default: %s)", config.DefaultMountCommand()),
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Mount table source: command, proc or systemd (default: " + config.DefaultSource + ")",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"T"},
				Usage:   fmt.Sprintf("Give up obtaining the mount table after this long (default: %s)", config.DefaultTimeout),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"C"},
				Usage:   "Configuration file path",
				Value:   config.DefaultConfigPath,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Increase output verbosity (use up to 3 times)",
				Config:  cli.BoolConfig{Count: &verbosity},
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"V"},
				Usage:   "Print version information",
			},
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return err
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Handle version flag
			if cmd.Bool("version") {
				fmt.Fprintln(stdout, version.String())
				return nil
			}

			verbosity = min(verbosity, maxVerbosity)
			log.SetupWriter(stderr, verbosity)

			r := run(ctx, cmd)
			result = &r
			return nil
		},
	}

	if err := cmd.Run(ctx, splitAttachedValues(args)); err != nil {
		r := check.UnknownResult(&check.ConfigError{Err: err})
		result = &r
	}

	if result == nil {
		return check.Unknown.ExitCode()
	}

	fmt.Fprint(stdout, result.Render(verbosity))
	return result.Status.ExitCode()
}

// valueFlags are the options taking a value. Short forms may carry the value
// attached (-w15:15, -p/home), as getopt-style plugins accept.
var valueFlags = map[string]bool{
	"w": true, "warning": true,
	"c": true, "critical": true,
	"p": true, "path": true,
	"t": true, "type": true,
	"M": true, "mount-path": true,
	"s": true, "source": true,
	"T": true, "timeout": true,
	"C": true, "config": true,
}

// splitAttachedValues rewrites "-w15:15" as "-w" "15:15". Values given as a
// separate argument are passed through untouched even when they start with
// a dash, and nothing after "--" is rewritten.
func splitAttachedValues(args []string) []string {
	if len(args) == 0 {
		return args
	}

	out := make([]string, 0, len(args)+2)
	out = append(out, args[0])
	expectValue := false
	for i, arg := range args[1:] {
		if expectValue {
			out = append(out, arg)
			expectValue = false
			continue
		}
		if arg == "--" {
			out = append(out, args[i+1:]...)
			break
		}

		if name, ok := strings.CutPrefix(arg, "--"); ok {
			out = append(out, arg)
			expectValue = valueFlags[name]
			continue
		}

		if len(arg) < 2 || arg[0] != '-' {
			out = append(out, arg)
			continue
		}

		short := arg[1:2]
		switch {
		case !valueFlags[short]:
			out = append(out, arg)
		case len(arg) == 2:
			out = append(out, arg)
			expectValue = true
		case arg[2] == '=':
			out = append(out, arg)
		default:
			out = append(out, "-"+short, arg[2:])
		}
	}
	return out
}

func run(ctx context.Context, cmd *cli.Command) check.Result {
	if cmd.Args().Present() {
		return check.UnknownResult(&check.ConfigError{
			Err: fmt.Errorf("unexpected arguments: %s", strings.Join(cmd.Args().Slice(), " ")),
		})
	}

	// Load config file
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return check.UnknownResult(&check.ConfigError{Err: fmt.Errorf("load config: %w", err)})
	}

	// Merge CLI flags (CLI takes precedence)
	cfg.Merge(
		cmd.String("source"),
		cmd.String("mount-path"),
		cmd.Duration("timeout"),
	)

	// Apply defaults
	cfg.ApplyDefaults()

	mode, err := check.NewMode(cmd.StringSlice("path"), cmd.StringSlice("type"))
	if err != nil {
		return check.UnknownResult(err)
	}

	thresholds, err := check.ParseThresholds(
		cmd.String("warning"),
		cmd.String("critical"),
		cfg.DefaultWarning,
		*cfg.DefaultCritical,
	)
	if err != nil {
		return check.UnknownResult(err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return check.UnknownResult(&check.ConfigError{Err: fmt.Errorf("invalid config: %w", err)})
	}

	ignore := check.DefaultIgnoreList()
	if cfg.IgnoreTypes != nil {
		ignore = check.NewIgnoreList(cfg.IgnoreTypes...)
	}

	src, err := source.New(cfg.Source, source.Options{
		MountCommand: cfg.MountCommand,
		ProcMounts:   cfg.ProcMounts,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		return check.UnknownResult(&check.ConfigError{Err: err})
	}

	log.Info("checking mounts",
		"source", cfg.Source,
		"mount_command", cfg.MountCommand,
		"timeout", cfg.Timeout,
		"mode", fmt.Sprintf("%+v", mode),
	)

	return check.NewChecker(src, mode, thresholds, ignore).Run(ctx)
}
