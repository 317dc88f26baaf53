package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/mounttable"
)

func TestMain(m *testing.M) {
	log.SetupWriter(io.Discard, 0)
	os.Exit(m.Run())
}

func staticRunner(output string, err error) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(output), err
	}
}

func TestCommandMounts(t *testing.T) {
	var gotName string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		assert.Empty(t, args, "mount must be run without arguments")
		return []byte("/dev/sda1 on / type ext4 (rw)\nbad line\n"), nil
	}

	src := NewCommand("/bin/mount", time.Second, WithRunner(runner))
	table, err := src.Mounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/bin/mount", gotName)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "/", table.Records[0].Path)
	assert.Equal(t, 1, table.Skipped)
}

func TestCommandMountsExecFailure(t *testing.T) {
	src := NewCommand("/bin/mount", time.Second, WithRunner(staticRunner("", errors.New("exit status 32"))))

	_, err := src.Mounts(context.Background())
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "/bin/mount", execErr.Path)
	assert.Contains(t, err.Error(), "exit status 32")
}

func TestCommandMountsUnparseable(t *testing.T) {
	src := NewCommand("/bin/mount", time.Second, WithRunner(staticRunner("nothing useful here\n", nil)))

	_, err := src.Mounts(context.Background())
	require.Error(t, err)

	var perr *mounttable.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestCommandMountsTimeout(t *testing.T) {
	hang := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	src := NewCommand("/bin/mount", 10*time.Millisecond, WithRunner(hang))
	_, err := src.Mounts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mount")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh available")
	}

	t.Run("stdout", func(t *testing.T) {
		script := writeScript(t, "echo '/dev/vda1 on / type xfs (rw)'\n")
		table, err := NewCommand(script, 5*time.Second).Mounts(context.Background())
		require.NoError(t, err)
		require.Len(t, table.Records, 1)
		assert.Equal(t, "xfs", table.Records[0].FSType)
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		script := writeScript(t, "echo 'mount: permission denied' >&2\nexit 1\n")
		_, err := NewCommand(script, 5*time.Second).Mounts(context.Background())
		require.Error(t, err)

		var execErr *ExecError
		require.True(t, errors.As(err, &execErr))
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := NewCommand(filepath.Join(t.TempDir(), "nope"), 5*time.Second).Mounts(context.Background())
		var execErr *ExecError
		require.True(t, errors.As(err, &execErr))
	})

	t.Run("hung process", func(t *testing.T) {
		script := writeScript(t, "sleep 30\n")
		start := time.Now()
		_, err := NewCommand(script, 100*time.Millisecond).Mounts(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
		assert.Less(t, time.Since(start), 10*time.Second)
	})
}

func TestNew(t *testing.T) {
	opts := Options{MountCommand: "/bin/mount", ProcMounts: "/proc/mounts", Timeout: time.Second}

	src, err := New("command", opts)
	require.NoError(t, err)
	assert.IsType(t, &Command{}, src)

	src, err = New("proc", opts)
	require.NoError(t, err)
	assert.IsType(t, &Proc{}, src)

	src, err = New("systemd", opts)
	require.NoError(t, err)
	assert.IsType(t, &Systemd{}, src)

	_, err = New("nfs", opts)
	assert.Error(t, err)
}
