package display

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/joshuarubin/go-sway"
)

// Static reports a fixed width
type Static int

// Width returns the fixed width
func (s Static) Width() int {
	return int(s)
}

type swayClient interface {
	GetWorkspaces(ctx context.Context) ([]sway.Workspace, error)
	GetOutputs(ctx context.Context) ([]sway.Output, error)
}

// Sway reports the width of the output holding the focused workspace
type Sway struct {
	client   swayClient
	fallback int

	mu    sync.RWMutex
	width int
}

// NewSway connects to sway and reads the current width. fallback is used
// whenever sway cannot tell.
func NewSway(ctx context.Context, fallback int) (*Sway, error) {
	client, err := sway.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to sway: %w", err)
	}
	s := newSway(client, fallback)
	if err := s.Refresh(ctx); err != nil {
		log.Printf("[DISPLAY] Using fallback width %d: %v", fallback, err)
	}
	return s, nil
}

func newSway(client swayClient, fallback int) *Sway {
	return &Sway{client: client, fallback: fallback, width: fallback}
}

// Width returns the last known width
func (s *Sway) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width
}

// Refresh asks sway for the focused output again
func (s *Sway) Refresh(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

func (s *Sway) refresh(ctx context.Context) (bool, error) {
	workspaces, err := s.client.GetWorkspaces(ctx)
	if err != nil {
		return false, fmt.Errorf("get workspaces: %w", err)
	}
	outputs, err := s.client.GetOutputs(ctx)
	if err != nil {
		return false, fmt.Errorf("get outputs: %w", err)
	}

	width, ok := focusedOutputWidth(workspaces, outputs)
	if !ok {
		width = s.fallback
	}

	s.mu.Lock()
	changed := width != s.width
	s.width = width
	s.mu.Unlock()

	return changed, nil
}

func focusedOutputWidth(workspaces []sway.Workspace, outputs []sway.Output) (int, bool) {
	name := ""
	for _, ws := range workspaces {
		if ws.Focused {
			name = ws.Output
			break
		}
	}
	if name == "" {
		return 0, false
	}

	for _, o := range outputs {
		if o.Name == name && o.Rect.Width > 0 {
			return int(o.Rect.Width), true
		}
	}
	return 0, false
}

type workspaceHandler struct {
	sway.EventHandler
	onWorkspace func(ctx context.Context)
}

func (h workspaceHandler) Workspace(ctx context.Context, _ sway.WorkspaceEvent) {
	h.onWorkspace(ctx)
}

// Watch follows workspace focus changes and calls onChange with the new
// width whenever it differs. It blocks until ctx is done or the
// subscription fails.
func (s *Sway) Watch(ctx context.Context, onChange func(width int)) error {
	handler := workspaceHandler{
		EventHandler: sway.NoOpEventHandler(),
		onWorkspace: func(ctx context.Context) {
			s.handleWorkspace(ctx, onChange)
		},
	}

	log.Printf("[DISPLAY] Watching sway workspace focus")
	return sway.Subscribe(ctx, handler, sway.EventTypeWorkspace)
}

func (s *Sway) handleWorkspace(ctx context.Context, onChange func(width int)) {
	changed, err := s.refresh(ctx)
	if err != nil {
		log.Printf("[DISPLAY] Refresh failed: %v", err)
		return
	}
	if changed && onChange != nil {
		width := s.Width()
		log.Printf("[DISPLAY] Width changed to %d", width)
		onChange(width)
	}
}
