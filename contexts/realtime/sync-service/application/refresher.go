package application

import (
	"context"
	"errors"
	"log/slog"

	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
)

// ReloadFunc re-reads the data an invalidation covers.
type ReloadFunc func(context.Context, entities.Invalidation) error

// Refresher drives a view's re-read loop from its session.
type Refresher struct {
	Logger *slog.Logger
}

// Run reloads once per invalidation until the session closes or ctx ends.
// A failed reload is logged and the loop keeps going; the next invalidation
// for the same collection converges the view again.
func (r Refresher) Run(ctx context.Context, session *Session, reload ReloadFunc) error {
	logger := ResolveLogger(r.Logger)
	for {
		item, err := session.Next(ctx)
		if err != nil {
			if errors.Is(err, domainerrors.ErrSessionClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := reload(ctx, item); err != nil {
			logger.Warn("realtime reload failed",
				"event", "realtime_reload_failed",
				"module", "realtime/sync-service",
				"layer", "application",
				"session_id", session.ID(),
				"collection", string(item.Collection),
				"row_id", item.RowID,
				"reason", item.Reason,
				"error", err.Error(),
			)
		}
	}
}
