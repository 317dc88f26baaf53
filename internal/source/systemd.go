package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/kriansa/check-mount/internal/log"
	"github.com/kriansa/check-mount/internal/mounttable"
)

const (
	systemdService          = "org.freedesktop.systemd1"
	systemdRootPath         = "/org/freedesktop/systemd1"
	systemdManagerInterface = "org.freedesktop.systemd1.Manager"
	systemdMountInterface   = "org.freedesktop.systemd1.Mount"
	dbusPropertiesInterface = "org.freedesktop.DBus.Properties"
)

// unitStatus mirrors the (ssssssouso) struct returned by ListUnits*
type unitStatus struct {
	Name        string
	Description string
	LoadState   string
	ActiveState string
	SubState    string
	Followed    string
	Path        dbus.ObjectPath
	JobID       uint32
	JobType     string
	JobPath     dbus.ObjectPath
}

// Systemd lists mounts from the active mount units known to systemd
type Systemd struct {
	timeout   time.Duration
	conn      BusConnection
	connectFn func() (BusConnection, error)
}

// SystemdOption is a functional option for Systemd
type SystemdOption func(*Systemd)

// WithConnection sets a custom bus connection (for testing)
func WithConnection(conn BusConnection) SystemdOption {
	return func(s *Systemd) {
		s.conn = conn
		s.connectFn = nil
	}
}

// NewSystemd creates a systemd source. The bus is only dialled by Mounts,
// so a missing system bus surfaces as a check error rather than at startup.
func NewSystemd(timeout time.Duration, opts ...SystemdOption) *Systemd {
	s := &Systemd{
		timeout:   timeout,
		connectFn: ConnectSystemBus,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Mounts queries systemd for active *.mount units and their properties
func (s *Systemd) Mounts(ctx context.Context) (mounttable.Table, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	conn := s.conn
	if conn == nil {
		var err error
		conn, err = s.connectFn()
		if err != nil {
			return mounttable.Table{}, fmt.Errorf("connect to system bus: %w", err)
		}
		defer conn.Close()
	}

	table, err := s.listMounts(ctx, conn)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return mounttable.Table{}, fmt.Errorf("query systemd: %w after %s", ErrTimeout, s.timeout)
	}
	return table, err
}

func (s *Systemd) listMounts(ctx context.Context, conn BusConnection) (mounttable.Table, error) {
	manager := conn.Object(systemdService, dbus.ObjectPath(systemdRootPath))

	log.Debug("listing systemd mount units")
	call := manager.CallWithContext(ctx, systemdManagerInterface+".ListUnitsByPatterns", 0,
		[]string{"active"}, []string{"*.mount"})
	if call.Err != nil {
		return mounttable.Table{}, fmt.Errorf("ListUnitsByPatterns: %w", call.Err)
	}

	var units []unitStatus
	if err := call.Store(&units); err != nil {
		return mounttable.Table{}, fmt.Errorf("store ListUnitsByPatterns result: %w", err)
	}

	var table mounttable.Table
	for _, unit := range units {
		rec, err := s.mountRecord(ctx, conn, unit)
		if err != nil {
			if ctx.Err() != nil {
				return mounttable.Table{}, err
			}
			log.Debug("skipping mount unit", "unit", unit.Name, "error", err)
			table.Skipped++
			continue
		}

		log.Debug("found mount", "unit", unit.Name, "path", rec.Path, "type", rec.FSType)
		table.Records = append(table.Records, rec)
	}

	if len(units) > 0 && len(table.Records) == 0 {
		return mounttable.Table{}, &mounttable.ParseError{Lines: len(units)}
	}

	return table, nil
}

func (s *Systemd) mountRecord(ctx context.Context, conn BusConnection, unit unitStatus) (mounttable.Record, error) {
	obj := conn.Object(systemdService, unit.Path)

	var props map[string]dbus.Variant
	call := obj.CallWithContext(ctx, dbusPropertiesInterface+".GetAll", 0, systemdMountInterface)
	if call.Err != nil {
		return mounttable.Record{}, fmt.Errorf("GetAll %s: %w", unit.Path, call.Err)
	}
	if err := call.Store(&props); err != nil {
		return mounttable.Record{}, fmt.Errorf("store GetAll result: %w", err)
	}

	where, ok := stringProperty(props, "Where")
	if !ok || where == "" {
		return mounttable.Record{}, fmt.Errorf("unit has no Where property")
	}
	fsType, _ := stringProperty(props, "Type")
	what, _ := stringProperty(props, "What")
	options, _ := stringProperty(props, "Options")

	var opts []string
	if options != "" {
		opts = strings.Split(options, ",")
	}

	return mounttable.Record{
		Device:  what,
		Path:    where,
		FSType:  fsType,
		Options: opts,
	}, nil
}

func stringProperty(props map[string]dbus.Variant, name string) (string, bool) {
	v, ok := props[name]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	return s, ok
}
