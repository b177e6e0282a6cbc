package monitor

import "sync/atomic"

// Session holds the process-wide detection_active flag. One session is
// shared by the monitoring loop, the status endpoint and every websocket
// client; the atomic keeps concurrent toggles and reads race-free.
type Session struct {
	active atomic.Bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Start() {
	s.active.Store(true)
}

func (s *Session) Stop() {
	s.active.Store(false)
}

func (s *Session) Active() bool {
	return s.active.Load()
}
