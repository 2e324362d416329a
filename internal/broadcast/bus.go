package broadcast

import (
	"errors"
	"log"
	"sort"
	"sync"
)

var ErrEmptyFilter = errors.New("receiver needs at least one action")

// Intent is a broadcast: an action name plus string extras
type Intent struct {
	Action string
	Extras map[string]string
}

type receiver struct {
	actions map[string]struct{}
	fn      func(action string, extras map[string]string)
}

// Bus delivers intents to receivers registered for their action. Delivery is
// synchronous on the sender's goroutine.
type Bus struct {
	mu        sync.RWMutex
	next      int
	receivers map[int]receiver
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{receivers: make(map[int]receiver)}
}

// RegisterReceiver registers fn for actions. The returned function removes
// the receiver and is safe to call more than once.
func (b *Bus) RegisterReceiver(actions []string, fn func(action string, extras map[string]string)) (func(), error) {
	if len(actions) == 0 {
		return nil, ErrEmptyFilter
	}
	if fn == nil {
		return nil, errors.New("nil receiver")
	}

	filter := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		filter[a] = struct{}{}
	}

	b.mu.Lock()
	b.next++
	id := b.next
	b.receivers[id] = receiver{actions: filter, fn: fn}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.receivers, id)
			b.mu.Unlock()
		})
	}, nil
}

// Send delivers intent to every matching receiver and returns how many got it.
// Receivers run outside the bus lock and in registration order.
func (b *Bus) Send(intent Intent) int {
	b.mu.RLock()
	ids := make([]int, 0, len(b.receivers))
	for id, r := range b.receivers {
		if _, ok := r.actions[intent.Action]; ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	fns := make([]func(string, map[string]string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.receivers[id].fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(intent.Action, copyExtras(intent.Extras))
	}

	if len(fns) == 0 {
		log.Printf("[BROADCAST] No receivers for %s", intent.Action)
	}
	return len(fns)
}

// SendAction is Send for callers that don't build an Intent
func (b *Bus) SendAction(action string, extras map[string]string) int {
	return b.Send(Intent{Action: action, Extras: extras})
}

// Receivers returns the number of registered receivers
func (b *Bus) Receivers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.receivers)
}

func copyExtras(extras map[string]string) map[string]string {
	out := make(map[string]string, len(extras))
	for k, v := range extras {
		out[k] = v
	}
	return out
}
