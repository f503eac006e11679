package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
)

// GeocodeMissing resolves the position of every store row that has none, with
// at most workers requests in flight. Rows that fail stay unpositioned and are
// skipped by importers; the number resolved and failed is returned.
func (c *Catalog) GeocodeMissing(ctx context.Context, g ports.Geocoder, workers int) (resolved, failed int) {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for i := range c.Stores {
		if c.Stores[i].HasPosition {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(rec *StoreRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			query := domain.StoreInput{Address: rec.Address, City: rec.City, Province: rec.Province}.GeocodeQuery()
			res, err := g.Geocode(ctx, query)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Warn("geocode failed", "catalog", c.Slug, "store", rec.Name, "error", err)
				return
			}
			rec.Lat, rec.Lng, rec.HasPosition = res.Lat, res.Lng, true
			if rec.PlaceID == "" {
				rec.PlaceID = res.PlaceID
			}
			resolved++
		}(&c.Stores[i])
	}
	wg.Wait()
	return resolved, failed
}
