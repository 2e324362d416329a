package gtk

import (
	"fmt"
	"log"
	"sync"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/hashicorp/golang-lru/v2"
)

// IconCache keeps loaded button icons by name and size. It must only be
// used from the GTK main loop.
type IconCache struct {
	cache    *lru.Cache[string, *gdk.Pixbuf]
	theme    *gtk.IconTheme
	fallback string

	mu     sync.Mutex
	hits   int
	misses int
}

// NewIconCache creates a cache of at most size icons
func NewIconCache(size int, fallback string) (*IconCache, error) {
	if size <= 0 {
		size = 64
	}

	cache, err := lru.New[string, *gdk.Pixbuf](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	theme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}

	if fallback == "" {
		fallback = "image-missing"
	}

	return &IconCache{cache: cache, theme: theme, fallback: fallback}, nil
}

func iconKey(name string, size int) string {
	return fmt.Sprintf("%s@%d", name, size)
}

// Get returns the icon, loading it from the theme on a miss. Icons the theme
// does not have are replaced by the fallback icon.
func (ic *IconCache) Get(name string, size int) (*gdk.Pixbuf, error) {
	if name == "" {
		name = ic.fallback
	}
	key := iconKey(name, size)

	if pixbuf, ok := ic.cache.Get(key); ok && pixbuf != nil {
		ic.count(true)
		return pixbuf, nil
	}
	ic.count(false)

	if !ic.theme.HasIcon(name) {
		if name == ic.fallback {
			return nil, fmt.Errorf("icon '%s' not found in theme", name)
		}
		log.Printf("[ICON-CACHE] Icon '%s' not found, using '%s'", name, ic.fallback)
		return ic.Get(ic.fallback, size)
	}

	pixbuf, err := ic.theme.LoadIcon(name, size, gtk.ICON_LOOKUP_USE_BUILTIN)
	if err != nil || pixbuf == nil {
		if name != ic.fallback {
			log.Printf("[ICON-CACHE] Failed to load '%s' (%v), trying fallback '%s'", name, err, ic.fallback)
			return ic.Get(ic.fallback, size)
		}
		return nil, fmt.Errorf("load icon '%s': %w", name, err)
	}

	ic.cache.Add(key, pixbuf)
	return pixbuf, nil
}

func (ic *IconCache) count(hit bool) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if hit {
		ic.hits++
	} else {
		ic.misses++
	}
}

// Stats returns hit and miss counts and the number of cached icons
func (ic *IconCache) Stats() (hits, misses, size int) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.hits, ic.misses, ic.cache.Len()
}

// Purge drops every cached icon, for example after a theme change
func (ic *IconCache) Purge() {
	ic.cache.Purge()
	log.Printf("[ICON-CACHE] Cache cleared")
}
