package broadcast

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
)

// Sender is anything intents can be sent on
type Sender interface {
	Send(intent Intent) int
}

// SignalSource turns process signals into broadcasts
type SignalSource struct {
	sender  Sender
	intents map[os.Signal]Intent

	mu         sync.RWMutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
	signalChan chan os.Signal
	done       chan struct{}
}

// NewSignalSource creates a source sending intents[sig] when sig arrives
func NewSignalSource(sender Sender, intents map[os.Signal]Intent) *SignalSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &SignalSource{
		sender:     sender,
		intents:    intents,
		ctx:        ctx,
		cancel:     cancel,
		signalChan: make(chan os.Signal, 1),
		done:       make(chan struct{}),
	}
}

// IsRunning returns whether the source is listening
func (s *SignalSource) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *SignalSource) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// Start starts listening for the mapped signals
func (s *SignalSource) Start() error {
	if s.IsRunning() {
		return fmt.Errorf("signal source is already running")
	}
	if len(s.intents) == 0 {
		return fmt.Errorf("signal source has no signals")
	}

	sigs := make([]os.Signal, 0, len(s.intents))
	for sig := range s.intents {
		sigs = append(sigs, sig)
	}
	signal.Notify(s.signalChan, sigs...)
	s.setRunning(true)

	go s.listen()

	return nil
}

func (s *SignalSource) listen() {
	defer close(s.done)
	defer s.setRunning(false)

	for {
		select {
		case <-s.ctx.Done():
			log.Printf("[BROADCAST] Signal source stopped")
			signal.Stop(s.signalChan)
			return
		case sig := <-s.signalChan:
			s.handleSignal(sig)
		}
	}
}

func (s *SignalSource) handleSignal(sig os.Signal) {
	intent, ok := s.intents[sig]
	if !ok {
		return
	}
	log.Printf("[BROADCAST] %v -> %s", sig, intent.Action)
	s.sender.Send(intent)
}

// Stop stops listening and waits for the listener to exit
func (s *SignalSource) Stop() {
	wasRunning := s.IsRunning()
	s.cancel()
	if wasRunning {
		<-s.done
	}
}
