package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"kzmarket/listingworker/internal/adapter"
	apperrors "kzmarket/listingworker/pkg/errors"
)

// utf8BOM lets spreadsheet software detect UTF-8 so Cyrillic text opens correctly
const utf8BOM = "\ufeff"

// Header is the CSV column order
var Header = []string{
	"marketplace", "category", "title", "price", "description",
	"location", "district", "area", "rooms", "url", "scraped_at",
}

// WriteCSV writes a BOM, the header row and one row per record
func WriteCSV(w io.Writer, records []adapter.ListingRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return apperrors.NewExport("failed to write BOM", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return apperrors.NewExport("failed to write header", err)
	}

	for _, r := range records {
		if err := writer.Write(row(r)); err != nil {
			return apperrors.NewExport("failed to write row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExport("csv write error", err)
	}
	return nil
}

func row(r adapter.ListingRecord) []string {
	var area, rooms string
	if r.Area != nil {
		area = strconv.FormatFloat(*r.Area, 'f', -1, 64)
	}
	if r.Rooms != nil {
		rooms = strconv.Itoa(*r.Rooms)
	}

	return []string{
		r.Marketplace,
		r.Category,
		r.Title,
		strconv.Itoa(r.Price),
		r.Description,
		r.Location,
		r.District,
		area,
		rooms,
		r.URL,
		r.ScrapedAt.Format(time.RFC3339),
	}
}

// FileName returns export_<host>_<YYYYmmdd_HHMMSS>.csv with ':' and '/' in host replaced
func FileName(host string, t time.Time) string {
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(host)
	return "export_" + safe + "_" + t.Format("20060102_150405") + ".csv"
}
