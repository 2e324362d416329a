package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	path   dbus.ObjectPath
	name   string
	values []interface{}
}

type fakeEmitter struct {
	mu   sync.Mutex
	got  []emitted
	fail bool
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("no bus")
	}
	f.got = append(f.got, emitted{path, name, values})
	return nil
}

func TestDBusBridgeSend(t *testing.T) {
	bus := NewBus()
	var got []string
	_, err := bus.RegisterReceiver([]string{"x.ACTION"}, func(action string, extras map[string]string) {
		got = append(got, action+":"+extras["k"])
	})
	require.NoError(t, err)

	bridge := NewDBusBridge(bus, nil)
	n, dbusErr := bridge.Send("x.ACTION", map[string]string{"k": "v"})
	assert.Nil(t, dbusErr)
	assert.Equal(t, int32(1), n)
	assert.Equal(t, []string{"x.ACTION:v"}, got)

	_, dbusErr = bridge.Send("", nil)
	assert.NotNil(t, dbusErr)
}

func TestDBusBridgeForwardsSelectedActions(t *testing.T) {
	bus := NewBus()
	bridge := NewDBusBridge(bus, []string{"out.OPEN"})
	fake := &fakeEmitter{}

	bridge.mu.Lock()
	require.NoError(t, bridge.attach(fake))
	bridge.mu.Unlock()

	assert.Equal(t, 1, bus.SendAction("out.OPEN", map[string]string{"button": "wifi"}))
	assert.Equal(t, 0, bus.SendAction("other", nil))
	bus.SendAction("out.OPEN", nil)

	require.Len(t, fake.got, 2)
	assert.Equal(t, DBusPath, fake.got[0].path)
	assert.Equal(t, DBusSignal, fake.got[0].name)
	assert.Equal(t, []interface{}{"out.OPEN", map[string]string{"button": "wifi"}}, fake.got[0].values)
	assert.Equal(t, map[string]string{}, fake.got[1].values[1], "signal extras are never nil")

	require.NoError(t, bridge.Stop())
	assert.Equal(t, 0, bus.Receivers())
	bus.SendAction("out.OPEN", nil)
	assert.Len(t, fake.got, 2)
}

func TestDBusBridgeEmitFailureIsLogged(t *testing.T) {
	bus := NewBus()
	bridge := NewDBusBridge(bus, []string{"out.OPEN"})

	bridge.mu.Lock()
	require.NoError(t, bridge.attach(&fakeEmitter{fail: true}))
	bridge.mu.Unlock()

	assert.NotPanics(t, func() { bus.SendAction("out.OPEN", nil) })
}
