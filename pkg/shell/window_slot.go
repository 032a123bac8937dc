package shell

import "sync"

// windowSlot holds at most one window. Host callbacks may arrive on any
// goroutine, so access is serialised.
type windowSlot struct {
	mu sync.Mutex
	w  Window
}

func (s *windowSlot) get() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}

func (s *windowSlot) set(w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// clear empties the slot only if it still holds w, so a late close
// notification from a replaced window cannot drop its successor.
func (s *windowSlot) clear(w Window) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != w {
		return false
	}
	s.w = nil
	return true
}
