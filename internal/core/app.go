package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/chess10kp/powerwidget/internal/broadcast"
	"github.com/chess10kp/powerwidget/internal/config"
	"github.com/chess10kp/powerwidget/internal/display"
	"github.com/chess10kp/powerwidget/internal/ipc"
	"github.com/chess10kp/powerwidget/internal/powerwidget"
	"github.com/chess10kp/powerwidget/internal/powerwidget/buttons"
	"github.com/chess10kp/powerwidget/internal/settings"
)

// App is main application
type App struct {
	config *config.Config
	store  *settings.FileStore
	bus    *broadcast.Bus

	// factories supplies the button factories registered by start
	factories func() []powerwidget.Factory

	widget  *powerwidget.Widget
	signals *broadcast.SignalSource
	dbus    *broadcast.DBusBridge
	ipc     *ipc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopped bool
	// stopHost ends the host's main loop
	stopHost func()
	sigChan  chan os.Signal
}

// NewApp opens the settings store. Nothing runs until Run.
func NewApp(cfg *config.Config) (*App, error) {
	store, err := settings.OpenFile(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:  cfg,
		store:   store,
		bus:     broadcast.NewBus(),
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
	}
	a.factories = a.buttonFactories
	return a, nil
}

func (a *App) buttonFactories() []powerwidget.Factory {
	return []powerwidget.Factory{buttons.NewFactory(buttons.Deps{
		Settings:         a.store,
		Broadcaster:      a.bus,
		BrightnessLevels: a.config.Buttons.BrightnessLevels,
	})}
}

// Run starts the application and blocks until it quits
func (a *App) Run() error {
	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-a.sigChan:
			log.Printf("Received signal: %v", sig)
			a.Quit()
		case <-a.ctx.Done():
		}
	}()
	defer signal.Stop(a.sigChan)

	log.Printf("%s starting with the %s host...", a.config.AppName, a.config.Widget.Host)

	switch a.config.Widget.Host {
	case config.HostText:
		return a.runText(os.Stdin, os.Stdout)
	default:
		return a.runGTK()
	}
}

// start wires the widget to host and starts every event source. The first
// build is queued as a boot-completed broadcast.
func (a *App) start(host powerwidget.Host, metrics powerwidget.DisplayMetrics) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("already running")
	}
	a.running = true
	a.mu.Unlock()

	registry := powerwidget.NewRegistry()
	for _, factory := range a.factories() {
		if err := registry.Register(factory); err != nil {
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return fmt.Errorf("register buttons: %w", err)
		}
	}

	a.widget = powerwidget.NewWidget(powerwidget.WidgetConfig{
		Registry:   registry,
		Host:       host,
		Settings:   a.store,
		Metrics:    metrics,
		Broadcasts: a.bus,
		Observer:   a.store,
	})
	a.widget.SetClickListener(func(id string) {
		log.Printf("[APP] Button '%s' clicked", id)
	})
	a.widget.SetLongClickListener(func(id string) {
		log.Printf("[APP] Button '%s' long pressed", id)
	})

	if err := a.store.Watch(); err != nil {
		log.Printf("[APP] Settings file will not be watched: %v", err)
	}

	router := a.widget.Router()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		router.Run(a.ctx)
	}()

	a.signals = broadcast.NewSignalSource(a.bus, map[os.Signal]broadcast.Intent{
		syscall.SIGHUP: {Action: powerwidget.ActionConfigurationChanged},
	})
	if err := a.signals.Start(); err != nil {
		log.Printf("[APP] Failed to start signal source: %v", err)
	}

	if a.config.DBus {
		bridge := broadcast.NewDBusBridge(a.bus, []string{buttons.ActionOpenSettings})
		if err := bridge.Start(); err != nil {
			log.Printf("[APP] D-Bus bridge disabled: %v", err)
		} else {
			a.dbus = bridge
		}
	}

	server := ipc.NewServer(a.config.SocketPath, a)
	if err := server.Start(); err != nil {
		log.Printf("[APP] Failed to start IPC server: %v", err)
	} else {
		a.ipc = server
	}

	// not subscribed to the bus yet, so this goes straight to the router
	router.Post(powerwidget.Broadcast{Action: powerwidget.ActionBootCompleted})

	log.Println("Initialization complete")
	return nil
}

// metrics picks the display width source for the GTK host
func (a *App) metrics() powerwidget.DisplayMetrics {
	fallback := a.config.Widget.FallbackWidth
	if !a.config.Widget.UseSway {
		return display.Static(fallback)
	}

	sw, err := display.NewSway(a.ctx, fallback)
	if err != nil {
		log.Printf("[APP] Sway unavailable, using width %d: %v", fallback, err)
		return display.Static(fallback)
	}
	a.watchDisplay(sw)
	return sw
}

// watchDisplay turns output width changes into configuration-changed
// broadcasts
func (a *App) watchDisplay(sw *display.Sway) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := sw.Watch(a.ctx, func(width int) {
			a.bus.SendAction(powerwidget.ActionConfigurationChanged, map[string]string{
				"width": strconv.Itoa(width),
			})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[APP] Sway watch ended: %v", err)
		}
	}()
}

// Quit gracefully quits the application
func (a *App) Quit() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	stopHost := a.stopHost
	a.mu.Unlock()

	log.Println("Shutting down...")

	if a.ipc != nil {
		a.ipc.Stop()
	}
	if a.signals != nil {
		a.signals.Stop()
	}
	if a.dbus != nil {
		a.dbus.Stop()
	}
	if err := a.store.Close(); err != nil {
		log.Printf("[APP] Error closing settings: %v", err)
	}

	a.cancel()
	a.wg.Wait()

	// the router has stopped, so nothing else touches the widget
	if a.widget != nil {
		a.widget.Close()
	}

	if stopHost != nil {
		stopHost()
	}
}

func (a *App) setStopHost(fn func()) {
	a.mu.Lock()
	a.stopHost = fn
	a.mu.Unlock()
}

func (a *App) router() *powerwidget.Router {
	return a.widget.Router()
}

// Broadcast sends an intent on the bus and returns how many receivers got it
func (a *App) Broadcast(action string, extras map[string]string) int {
	return a.bus.SendAction(action, extras)
}

// Set writes a setting; observers hear about it if the value changed
func (a *App) Set(key, value string) error {
	return a.store.PutString(key, value)
}

// Get reads a setting
func (a *App) Get(key string) (string, bool) {
	return a.store.GetString(key)
}

func (a *App) ToggleVisibility() {
	a.router().Post(powerwidget.ToggleVisibility{})
}

func (a *App) Click(index int, long bool) {
	a.router().Post(powerwidget.Click{Index: index, Long: long})
}

// Rebuild reloads the button list as if widget_buttons had changed
func (a *App) Rebuild() {
	a.router().Post(powerwidget.SettingChanged{Key: powerwidget.SettingButtons})
}
