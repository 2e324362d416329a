package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCommands struct {
	mu         sync.Mutex
	broadcasts []string
	extras     []map[string]string
	values     map[string]string
	setErr     error
	toggles    int
	clicks     []int
	longClicks []int
	rebuilds   int
}

func newMockCommands() *mockCommands {
	return &mockCommands{values: map[string]string{}}
}

func (m *mockCommands) Broadcast(action string, extras map[string]string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, action)
	m.extras = append(m.extras, extras)
	return 3
}

func (m *mockCommands) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockCommands) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockCommands) ToggleVisibility() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
}

func (m *mockCommands) Click(index int, long bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if long {
		m.longClicks = append(m.longClicks, index)
	} else {
		m.clicks = append(m.clicks, index)
	}
}

func (m *mockCommands) Rebuild() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
}

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		line string
		want Command
	}{
		{"ping", Command{Name: CmdPing}},
		{"  TOGGLE  ", Command{Name: CmdToggle}},
		{"rebuild", Command{Name: CmdRebuild}},
		{"click 2", Command{Name: CmdClick, Index: 2}},
		{"longclick 0", Command{Name: CmdLongClick, Index: 0}},
		{"get widget_buttons", Command{Name: CmdGet, Key: "widget_buttons"}},
		{"set widget_buttons wifi|sound", Command{Name: CmdSet, Key: "widget_buttons", Value: "wifi|sound"}},
		{"set greeting hello  world", Command{Name: CmdSet, Key: "greeting", Value: "hello  world"}},
		{"set greeting", Command{Name: CmdSet, Key: "greeting"}},
		{"set greeting   ", Command{Name: CmdSet, Key: "greeting"}},
		{"broadcast a.B state=on mode=", Command{Name: CmdBroadcast, Action: "a.B", Extras: map[string]string{"state": "on", "mode": ""}}},
		{"broadcast a.B", Command{Name: CmdBroadcast, Action: "a.B", Extras: map[string]string{}}},
	}

	for _, tc := range testCases {
		got, err := ParseCommand(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"launch",
		"broadcast",
		"broadcast a novalue",
		"broadcast a =v",
		"set",
		"get",
		"get a b",
		"click",
		"click x",
		"click -1",
		"toggle now",
	} {
		_, err := ParseCommand(line)
		assert.Error(t, err, "%q should not parse", line)
	}

	_, err := ParseCommand("")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestCommandStringRoundTrip(t *testing.T) {
	for _, line := range []string{
		"broadcast a.B mode=1 state=on",
		"set widget_buttons wifi|gps",
		"set note",
		"get k",
		"click 4",
		"longclick 1",
		"toggle",
	} {
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		assert.Equal(t, line, cmd.String())
	}
}

func TestParseReply(t *testing.T) {
	detail, err := ParseReply("ok\n")
	assert.NoError(t, err)
	assert.Empty(t, detail)

	detail, err = ParseReply("ok wifi|sound")
	assert.NoError(t, err)
	assert.Equal(t, "wifi|sound", detail)

	_, err = ParseReply("error something broke")
	assert.EqualError(t, err, "something broke")

	_, err = ParseReply("what")
	assert.Error(t, err)
}

func TestServerHandle(t *testing.T) {
	commands := newMockCommands()
	s := NewServer("", commands)

	assert.Equal(t, "ok pong", s.Handle("ping"))
	assert.Equal(t, "ok 3", s.Handle("broadcast x.Y state=on"))
	assert.Equal(t, "ok", s.Handle("set widget_buttons wifi"))
	assert.Equal(t, "ok wifi", s.Handle("get widget_buttons"))
	assert.Equal(t, "error missing is not set", s.Handle("get missing"))
	assert.Equal(t, "ok", s.Handle("toggle"))
	assert.Equal(t, "ok", s.Handle("click 1"))
	assert.Equal(t, "ok", s.Handle("longclick 2"))
	assert.Equal(t, "ok", s.Handle("rebuild"))
	assert.Contains(t, s.Handle("bogus"), "error unknown command")

	assert.Equal(t, "ok", s.Handle("set widget_buttons"))
	assert.Equal(t, "ok", s.Handle("get widget_buttons"), "an empty value is still set")
	v, ok := commands.values["widget_buttons"]
	assert.True(t, ok)
	assert.Empty(t, v)

	commands.setErr = errors.New("read-only")
	assert.Equal(t, "error read-only", s.Handle("set a b"))

	assert.Equal(t, []string{"x.Y"}, commands.broadcasts)
	assert.Equal(t, "on", commands.extras[0]["state"])
	assert.Equal(t, 1, commands.toggles)
	assert.Equal(t, []int{1}, commands.clicks)
	assert.Equal(t, []int{2}, commands.longClicks)
	assert.Equal(t, 1, commands.rebuilds)
}

func socketPath(t *testing.T) string {
	t.Helper()
	// unix socket paths are length limited; keep it short
	dir, err := os.MkdirTemp("", "pw")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ipc.sock")
}

func TestServerRoundTrip(t *testing.T) {
	path := socketPath(t)
	commands := newMockCommands()
	s := NewServer(path, commands)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second start must fail")

	detail, err := Send(path, "ping", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pong", detail)

	_, err = SendCommand(path, Command{Name: CmdSet, Key: "expanded_view_widget", Value: "2"}, time.Second)
	require.NoError(t, err)
	detail, err = Send(path, "get expanded_view_widget", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2", detail)

	_, err = Send(path, "click nope", time.Second)
	assert.Error(t, err)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "socket file is removed on stop")

	_, err = Send(path, "ping", 100*time.Millisecond)
	assert.Error(t, err)
}

func TestServerReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s := NewServer(path, newMockCommands())
	require.NoError(t, s.Start())
	defer s.Stop()

	_, err := Send(path, "ping", time.Second)
	assert.NoError(t, err)
}
