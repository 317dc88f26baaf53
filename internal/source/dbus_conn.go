package source

import (
	"github.com/godbus/dbus/v5"
)

// BusConnection is the part of a system bus connection the systemd source
// needs: resolving the manager and unit objects of org.freedesktop.systemd1
type BusConnection interface {
	// Object returns the systemd object at path, e.g. a *.mount unit
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	// Close releases the connection once the unit list has been read
	Close() error
}

// systemBus is the BusConnection dialled for each check run
type systemBus struct {
	conn *dbus.Conn
}

func (b *systemBus) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	return b.conn.Object(dest, path)
}

func (b *systemBus) Close() error {
	return b.conn.Close()
}

// ConnectSystemBus opens a private system bus connection for querying
// systemd mount units; Systemd.Mounts closes it when done
func ConnectSystemBus() (BusConnection, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, err
	}
	return &systemBus{conn: conn}, nil
}
