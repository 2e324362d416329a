package display

import (
	"context"
	"errors"
	"testing"

	"github.com/joshuarubin/go-sway"
)

type mockSwayClient struct {
	workspaces []sway.Workspace
	outputs    []sway.Output
	err        error
}

func (c *mockSwayClient) GetWorkspaces(ctx context.Context) ([]sway.Workspace, error) {
	return c.workspaces, c.err
}

func (c *mockSwayClient) GetOutputs(ctx context.Context) ([]sway.Output, error) {
	return c.outputs, c.err
}

func twoOutputs() []sway.Output {
	return []sway.Output{
		{Name: "eDP-1", Rect: sway.Rect{Width: 1920, Height: 1080}},
		{Name: "HDMI-A-1", Rect: sway.Rect{Width: 2560, Height: 1440}},
	}
}

func TestStatic(t *testing.T) {
	if Static(720).Width() != 720 {
		t.Errorf("Expected 720")
	}
}

func TestFocusedOutputWidth(t *testing.T) {
	workspaces := []sway.Workspace{
		{Name: "1", Output: "eDP-1"},
		{Name: "2", Output: "HDMI-A-1", Focused: true},
	}

	width, ok := focusedOutputWidth(workspaces, twoOutputs())
	if !ok || width != 2560 {
		t.Errorf("Expected 2560, got %d (ok=%v)", width, ok)
	}

	if _, ok := focusedOutputWidth(workspaces[:1], twoOutputs()); ok {
		t.Errorf("Expected no width without a focused workspace")
	}
	if _, ok := focusedOutputWidth(workspaces, twoOutputs()[:1]); ok {
		t.Errorf("Expected no width when the output is missing")
	}
}

func TestSwayRefreshAndChange(t *testing.T) {
	client := &mockSwayClient{
		workspaces: []sway.Workspace{{Name: "1", Output: "eDP-1", Focused: true}},
		outputs:    twoOutputs(),
	}
	s := newSway(client, 1080)

	if s.Width() != 1080 {
		t.Fatalf("Expected fallback before refresh, got %d", s.Width())
	}

	var got []int
	s.handleWorkspace(context.Background(), func(w int) { got = append(got, w) })
	s.handleWorkspace(context.Background(), func(w int) { got = append(got, w) })

	client.workspaces = []sway.Workspace{{Name: "2", Output: "HDMI-A-1", Focused: true}}
	s.handleWorkspace(context.Background(), func(w int) { got = append(got, w) })

	if len(got) != 2 || got[0] != 1920 || got[1] != 2560 {
		t.Errorf("Expected changes [1920 2560], got %v", got)
	}
}

func TestSwayRefreshError(t *testing.T) {
	client := &mockSwayClient{err: errors.New("socket closed")}
	s := newSway(client, 1080)

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatalf("Expected an error")
	}
	if s.Width() != 1080 {
		t.Errorf("Expected width to stay at fallback, got %d", s.Width())
	}

	calls := 0
	s.handleWorkspace(context.Background(), func(int) { calls++ })
	if calls != 0 {
		t.Errorf("Expected no change callback on error")
	}
}

func TestSwayFallsBackWhenUnfocused(t *testing.T) {
	client := &mockSwayClient{
		workspaces: []sway.Workspace{{Name: "1", Output: "eDP-1", Focused: true}},
		outputs:    twoOutputs(),
	}
	s := newSway(client, 1080)
	s.Refresh(context.Background())

	client.workspaces = nil
	s.Refresh(context.Background())
	if s.Width() != 1080 {
		t.Errorf("Expected fallback once sway reports no focus, got %d", s.Width())
	}
}
