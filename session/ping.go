/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package session

import "time"

// startPinging launches the single cancelable 30-second keepalive loop
// described in spec §4.2. Unlike the original Python source's
// schedule_ping, which recursively reschedules itself, this runs as one
// goroutine with a time.Ticker, stopped
// exactly once via pingStop when the session tears down — no inbound pong
// is expected or required (spec §4.2, §5).
func (s *Session) startPinging() {
	s.pingStop = make(chan struct{})
	go s.pingLoop(s.pingStop)
}

func (s *Session) pingLoop(stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.getState() != Ready {
				return
			}
			s.actorCh <- func() {
				if s.getState() == Ready {
					s.write(pingIQ(s.jid))
				}
			}
		}
	}
}

func (s *Session) stopPinging() {
	if s.pingStop != nil {
		close(s.pingStop)
		s.pingStop = nil
	}
}
