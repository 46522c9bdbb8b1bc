package forum

import "time"

// StartThreadCleaner launches the keep-alive sweep in the background. Boards
// with ThreadKeepAliveTime == 0 keep their threads forever.
func (s *Service) StartThreadCleaner(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			if err := s.SweepExpiredThreads(); err != nil {
				s.log.Errorw("thread keep-alive sweep failed", "error", err)
			}
		}
	}()
}

// SweepExpiredThreads deletes threads whose last hit is older than their
// board's keep-alive window, then purges the replies this detached.
func (s *Service) SweepExpiredThreads() error {
	boards, err := s.boards.All()
	if err != nil {
		return err
	}

	removed := 0
	for i := range boards {
		board := &boards[i]
		keepAlive := board.Settings.ThreadKeepAliveTime
		if keepAlive <= 0 {
			continue
		}
		cutoff := s.clock.Now().Add(-time.Duration(keepAlive) * time.Millisecond)

		expired, err := s.comments.ThreadsNotHitSince(board.ID, cutoff)
		if err != nil {
			return err
		}
		for j := range expired {
			t := &expired[j]
			if err := s.removeFile(board.URL, t); err != nil {
				return err
			}
			if err := s.comments.Delete(t.ID); err != nil {
				return err
			}
			removed++
		}
	}
	if removed > 0 {
		s.log.Infow("expired threads removed", "count", removed)
	}
	return s.PurgeOrphans()
}
