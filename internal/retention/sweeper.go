// Package retention purges notes that have been in the trash longer than the
// retention window. It runs only when invoked (app start, trash view opened);
// there is no background timer, so a note can outlive the window slightly if
// nothing triggers a sweep. That staleness is accepted.
package retention

import (
	"log/slog"
	"time"

	"github.com/jharlan/notedeck/internal/model"
)

// NoteStore is the slice of the record store the sweeper needs.
type NoteStore interface {
	ListDeleted() ([]model.Note, error)
	Delete(id string) error
}

type Sweeper struct {
	notes  NoteStore
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSweeper(notes NoteStore, window time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		notes:  notes,
		window: window,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Sweep hard-deletes every trashed note strictly older than the window and
// returns the number purged. A note deleted exactly window ago is retained.
// Per-note failures are logged and skipped; only a failed listing aborts.
func (s *Sweeper) Sweep() (int, error) {
	trashed, err := s.notes.ListDeleted()
	if err != nil {
		return 0, err
	}

	now := s.now()
	purged := 0
	for _, n := range trashed {
		if n.DeletedAt == nil {
			// Should be unreachable given the store invariant.
			s.logger.Warn("trashed note missing deleted_at", "id", n.ID)
			continue
		}
		if now.Sub(*n.DeletedAt) <= s.window {
			continue
		}
		if err := s.notes.Delete(n.ID); err != nil {
			s.logger.Error("purge trashed note", "id", n.ID, "error", err)
			continue
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info("retention sweep", "purged", purged, "window", s.window)
	}
	return purged, nil
}
