package persist

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-chess/kestrel/ttable"
)

// ErrNoDB is returned by a shutdown hook that has nowhere to write.
var ErrNoDB = errors.New("no database")

// ShutdownHook writes out what a run has learned: it locks the store so no
// more entries arrive, saves the table and appends the move log.
type ShutdownHook struct {
	DB            *DB
	Store         *ttable.Store
	SaveTable     bool
	RecordMoveLog bool
	GameID        string
	// MoveLog is called at shutdown time to get the log of the game.
	MoveLog func() string
}

// Run never panics; failures are logged and returned together.
func (h *ShutdownHook) Run(ctx context.Context) error {
	if h.Store != nil {
		h.Store.Lock()
	}
	if h.DB == nil {
		log.Error().Msg("shutdown-hook-without-database")
		return ErrNoDB
	}
	var errs []error
	if h.SaveTable && h.Store != nil {
		if err := h.DB.SaveTable(ctx, h.Store); err != nil {
			log.Err(err).Msg("shutdown-save-table-failed")
			errs = append(errs, err)
		}
	}
	if h.RecordMoveLog && h.MoveLog != nil {
		if err := h.DB.AppendMoveLog(ctx, h.GameID, h.MoveLog()); err != nil {
			log.Err(err).Msg("shutdown-record-move-log-failed")
			errs = append(errs, err)
		}
	}
	log.Info().Bool("ok", len(errs) == 0).Msg("shutdown-hook-finished")
	return errors.Join(errs...)
}
