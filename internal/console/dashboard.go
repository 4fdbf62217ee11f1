package console

import (
	"context"

	"github.com/iliyamo/parking-console/internal/model"
)

type DashboardData struct {
	Spaces    []model.ParkingSpace `json:"spaces"`
	Available int                  `json:"available"`
	Occupied  int                  `json:"occupied"`
}

// Dashboard shows every space as a tile, ordered by identifier.
func (c *Console) Dashboard(ctx context.Context) *Page {
	p := NewPage(Dashboard)
	spaces := c.spaces.ListAll(ctx, p)
	data := DashboardData{Spaces: spaces}
	for _, s := range spaces {
		if s.Available() {
			data.Available++
		} else {
			data.Occupied++
		}
	}
	p.Data = data
	if len(spaces) == 0 {
		p.Warn("No parking spaces found in the database.")
	}
	return p
}
