// Package catalog reads store, item and stock catalogs used to seed the database.
//
// A manifest lists catalogs; each catalog names three CSV sources (local paths
// or http(s) URLs):
//
//	items.csv   name,description,barcode,units
//	stores.csv  name,address,city,province,lat,lng,place_id
//	stock.csv   store_name,store_address,item_name,quantity,price
//
// Store rows with empty lat/lng are geocoded by the importer.
package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// Manifest lists the catalogs to import.
type Manifest struct {
	Source   string  `json:"source"`
	Catalogs []Entry `json:"catalogs"`
}

// Entry is a single catalog in a manifest.
type Entry struct {
	Slug   string `json:"slug"`
	Items  string `json:"items"`
	Stores string `json:"stores"`
	Stock  string `json:"stock,omitempty"`
}

// StoreRecord is a store row. HasPosition is false when lat/lng were blank.
type StoreRecord struct {
	domain.Store
	HasPosition bool
}

// StockRecord links a store, identified by name and address, to an item by name.
type StockRecord struct {
	StoreName    string
	StoreAddress string
	ItemName     string
	Quantity     int
	Price        decimal.Decimal
}

// Catalog is a fully parsed catalog entry.
type Catalog struct {
	Slug   string
	Items  []domain.Item
	Stores []StoreRecord
	Stock  []StockRecord
}

// LoadManifest reads a manifest from a local JSON file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i, e := range m.Catalogs {
		if e.Slug == "" || e.Items == "" || e.Stores == "" {
			return nil, fmt.Errorf("manifest catalog %d: slug, items and stores are required", i)
		}
	}
	return &m, nil
}

// Load fetches and parses every source of a catalog entry.
func Load(ctx context.Context, f *Fetcher, e Entry) (*Catalog, error) {
	c := &Catalog{Slug: e.Slug}

	rc, err := f.Open(ctx, e.Items)
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	c.Items, err = ParseItems(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	rc, err = f.Open(ctx, e.Stores)
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	c.Stores, err = ParseStores(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}

	if e.Stock != "" {
		rc, err = f.Open(ctx, e.Stock)
		if err != nil {
			return nil, fmt.Errorf("stock: %w", err)
		}
		c.Stock, err = ParseStock(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("stock: %w", err)
		}
	}
	return c, nil
}

// ParseItems reads items.csv. Rows without a name are skipped.
func ParseItems(r io.Reader) ([]domain.Item, error) {
	var items []domain.Item
	err := eachRecord(r, []string{"name"}, func(rec record) error {
		name := rec.get("name")
		if name == "" {
			return nil
		}
		items = append(items, domain.Item{
			Name:        name,
			Description: rec.get("description"),
			Barcode:     rec.get("barcode"),
			Units:       rec.get("units"),
		})
		return nil
	})
	return items, err
}

// ParseStores reads stores.csv.
func ParseStores(r io.Reader) ([]StoreRecord, error) {
	var stores []StoreRecord
	err := eachRecord(r, []string{"name", "address", "city", "province"}, func(rec record) error {
		s := StoreRecord{Store: domain.Store{
			Name:     rec.get("name"),
			Address:  rec.get("address"),
			City:     rec.get("city"),
			Province: rec.get("province"),
			PlaceID:  rec.get("place_id"),
		}}
		if s.Name == "" || s.Address == "" {
			return nil
		}

		latStr, lngStr := rec.get("lat"), rec.get("lng")
		if latStr != "" && lngStr != "" {
			lat, err := strconv.ParseFloat(latStr, 64)
			if err != nil {
				return fmt.Errorf("line %d: lat: %w", rec.line, err)
			}
			lng, err := strconv.ParseFloat(lngStr, 64)
			if err != nil {
				return fmt.Errorf("line %d: lng: %w", rec.line, err)
			}
			if !(domain.Coordinate{Lat: lat, Lng: lng}).Valid() {
				return fmt.Errorf("line %d: %w", rec.line, domain.ErrInvalidCoordinates)
			}
			s.Lat, s.Lng, s.HasPosition = lat, lng, true
		}
		stores = append(stores, s)
		return nil
	})
	return stores, err
}

// ParseStock reads stock.csv. Blank quantity and price default to zero.
func ParseStock(r io.Reader) ([]StockRecord, error) {
	var stock []StockRecord
	err := eachRecord(r, []string{"store_name", "store_address", "item_name"}, func(rec record) error {
		s := StockRecord{
			StoreName:    rec.get("store_name"),
			StoreAddress: rec.get("store_address"),
			ItemName:     rec.get("item_name"),
			Price:        decimal.Zero,
		}
		if s.StoreName == "" || s.ItemName == "" {
			return nil
		}
		if q := rec.get("quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 0 {
				return fmt.Errorf("line %d: invalid quantity %q", rec.line, q)
			}
			s.Quantity = n
		}
		if p := rec.get("price"); p != "" {
			d, err := decimal.NewFromString(p)
			if err != nil || d.IsNegative() {
				return fmt.Errorf("line %d: invalid price %q", rec.line, p)
			}
			s.Price = d
		}
		stock = append(stock, s)
		return nil
	})
	return stock, err
}

// ---------------------------------------------------------------------------
// CSV helpers
// ---------------------------------------------------------------------------

type record struct {
	line   int
	fields []string
	cols   map[string]int
}

func (r record) get(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func eachRecord(r io.Reader, required []string, fn func(record) error) error {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty csv")
		}
		return err
	}
	cols := indexColumns(header)
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(record{line: line, fields: fields, cols: cols}); err != nil {
			return err
		}
	}
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}
