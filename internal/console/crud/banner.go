package crud

import "sync"

// Banner is the error line above a screen. List, form and delete share one.
type Banner struct {
	mu  sync.RWMutex
	msg string
}

func (b *Banner) Set(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = msg
}

func (b *Banner) Clear() { b.Set("") }

func (b *Banner) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.msg
}
