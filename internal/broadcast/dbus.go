package broadcast

import (
	"fmt"
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	DBusName      = "org.chess10kp.PowerWidget"
	DBusPath      = dbus.ObjectPath("/org/chess10kp/PowerWidget")
	DBusInterface = "org.chess10kp.PowerWidget"
	// DBusSignal carries intents sent on the bus out to other processes
	DBusSignal = DBusInterface + ".Intent"
)

type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// DBusBridge connects a Bus to the session bus. Other processes call Send to
// broadcast into the widget, and intents with one of the forwarded actions
// are emitted as Intent signals.
type DBusBridge struct {
	bus     *Bus
	forward []string

	mu         sync.Mutex
	conn       *dbus.Conn
	emitter    emitter
	unregister func()
	running    bool
}

// NewDBusBridge creates a bridge for bus. forward lists the actions to
// re-emit on D-Bus.
func NewDBusBridge(bus *Bus, forward []string) *DBusBridge {
	return &DBusBridge{
		bus:     bus,
		forward: append([]string(nil), forward...),
	}
}

func (d *DBusBridge) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("bridge already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(d, DBusPath, DBusInterface); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export interface: %w", err)
	}

	reply, err := conn.RequestName(DBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("name %s already owned by another process", DBusName)
	}

	d.conn = conn
	if err := d.attach(conn); err != nil {
		conn.ReleaseName(DBusName)
		conn.Close()
		d.conn = nil
		return err
	}
	d.running = true

	log.Printf("[BROADCAST] D-Bus bridge started on %s", DBusName)
	return nil
}

// attach starts forwarding intents to e; d.mu must be held
func (d *DBusBridge) attach(e emitter) error {
	d.emitter = e
	if len(d.forward) == 0 {
		return nil
	}

	unregister, err := d.bus.RegisterReceiver(d.forward, d.emit)
	if err != nil {
		return fmt.Errorf("register forwarder: %w", err)
	}
	d.unregister = unregister
	return nil
}

func (d *DBusBridge) emit(action string, extras map[string]string) {
	d.mu.Lock()
	e := d.emitter
	d.mu.Unlock()

	if e == nil {
		return
	}
	if extras == nil {
		extras = map[string]string{}
	}
	if err := e.Emit(DBusPath, DBusSignal, action, extras); err != nil {
		log.Printf("[BROADCAST] Failed to emit %s: %v", action, err)
	}
}

// Send is the exported D-Bus method. It returns the number of receivers.
func (d *DBusBridge) Send(action string, extras map[string]string) (int32, *dbus.Error) {
	if action == "" {
		return 0, dbus.MakeFailedError(fmt.Errorf("empty action"))
	}
	log.Printf("[BROADCAST] D-Bus send %s", action)
	return int32(d.bus.SendAction(action, extras)), nil
}

func (d *DBusBridge) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.unregister != nil {
		d.unregister()
		d.unregister = nil
	}
	d.emitter = nil

	if !d.running {
		return nil
	}
	d.running = false

	if d.conn != nil {
		d.conn.ReleaseName(DBusName)
		d.conn.Close()
		d.conn = nil
	}

	log.Println("[BROADCAST] D-Bus bridge stopped")
	return nil
}
