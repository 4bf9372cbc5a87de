package kardex

import (
	"time"
)

// startAutosave launches the periodic checkpoint goroutine. It runs until
// Close. Checkpoints suppressed by a bulk operation or a read-only
// session are silent no-ops.
func (s *session) startAutosave() {
	s.autosave.Add(1)
	go func() {
		defer s.autosave.Done()

		ticker := time.NewTicker(s.config.autosaveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ack, err := s.Checkpoint()
				if err != nil {
					s.config.logger.Error().Err(err).Msg("autosave failed")
					continue
				}
				if ack.Written {
					s.config.logger.Debug().Msg("autosave checkpoint written")
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}
