package core

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	gtkhost "github.com/chess10kp/powerwidget/internal/host/gtk"
)

// runGTK shows the widget in a layer-shell window and runs the GTK main loop
func (a *App) runGTK() error {
	gtk.Init(nil)

	s := a.config.Styling
	gtkhost.SetupStyles(gtkhost.Styling{
		Background:      s.Background,
		Foreground:      s.Foreground,
		OnColor:         s.OnColor,
		OffColor:        s.OffColor,
		TransitionColor: s.TransitionColor,
		Font:            s.Font,
		FontSize:        s.FontSize,
		CustomCSS:       s.CustomCSS,
	})

	icons, err := gtkhost.NewIconCache(a.config.Widget.IconCacheSize, "")
	if err != nil {
		log.Printf("Failed to create icon cache: %v", err)
		icons = nil
	}

	host, err := gtkhost.NewHost(gtkhost.Options{
		Title:    a.config.AppName,
		Anchor:   a.config.Widget.Anchor,
		Height:   a.config.Widget.Height,
		Margin:   a.config.Widget.Margin,
		IconSize: a.config.Widget.IconSize,
		Icons:    icons,
	})
	if err != nil {
		return fmt.Errorf("create GTK host: %w", err)
	}
	a.setStopHost(func() {
		glib.IdleAdd(gtk.MainQuit)
	})

	if err := a.start(host, a.metrics()); err != nil {
		return err
	}

	go a.monitorMainLoop(icons)

	gtk.Main()

	a.Quit()
	return nil
}

// monitorMainLoop logs resource use and warns when the GTK main loop stops
// running idle callbacks
func (a *App) monitorMainLoop(icons *gtkhost.IconCache) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		log.Printf("[MONITOR] Goroutines: %d, Alloc: %d MB, pending events: %d",
			runtime.NumGoroutine(), m.Alloc/1024/1024, a.router().Pending())
		if icons != nil {
			hits, misses, size := icons.Stats()
			log.Printf("[MONITOR] Icons: %d cached, %d hits, %d misses", size, hits, misses)
		}

		done := make(chan struct{}, 1)
		glib.IdleAdd(func() {
			done <- struct{}{}
		})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			log.Printf("[MONITOR] WARNING: GTK main loop appears to be BLOCKED (callback not executed in 2s)")
		case <-a.ctx.Done():
			return
		}
	}
}
