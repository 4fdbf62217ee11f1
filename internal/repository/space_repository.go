// Package repository holds the console's SQL.  Each repo is bound to a
// store.Gateway and passes the caller's Reporter through, so a failed query
// shows up on the page and the call returns an empty result.
package repository

import (
	"context"

	"github.com/iliyamo/parking-console/internal/model"
	"github.com/iliyamo/parking-console/internal/store"
)

// SpaceRepo reads PARKING_SPACE.  Spaces are never written here; only the
// booking and release procedures change their status.
type SpaceRepo struct {
	gw *store.Gateway
}

// NewSpaceRepo returns a SpaceRepo bound to the given gateway.
func NewSpaceRepo(gw *store.Gateway) *SpaceRepo { return &SpaceRepo{gw: gw} }

const (
	listSpacesSQL      = `SELECT SPACE_ID, LOCATION, STATUS, PRIORITY FROM PARKING_SPACE ORDER BY SPACE_ID`
	availableSpacesSQL = `SELECT SPACE_ID, LOCATION, STATUS, PRIORITY FROM PARKING_SPACE WHERE STATUS = 'Available' ORDER BY SPACE_ID`
)

// ListAll returns every space ordered by identifier.
func (r *SpaceRepo) ListAll(ctx context.Context, rep store.Reporter) []model.ParkingSpace {
	return spacesFrom(r.gw.Fetch(ctx, rep, listSpacesSQL))
}

// ListAvailable returns the spaces that can be offered for booking.
func (r *SpaceRepo) ListAvailable(ctx context.Context, rep store.Reporter) []model.ParkingSpace {
	return spacesFrom(r.gw.Fetch(ctx, rep, availableSpacesSQL))
}

func spacesFrom(recs []store.Record) []model.ParkingSpace {
	out := make([]model.ParkingSpace, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.ParkingSpace{
			ID:       rec.String("SPACE_ID"),
			Location: rec.String("LOCATION"),
			Status:   model.SpaceStatus(rec.String("STATUS")),
			Priority: rec.Int64("PRIORITY"),
		})
	}
	return out
}
