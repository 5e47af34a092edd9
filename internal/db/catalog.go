package db

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/treeline-data/forestscan/internal/grid"
)

// RasterRecord is one cataloged raster output.
type RasterRecord struct {
	RasterID         int64
	RunID            string
	Kind             string // "pai", "cover", "fhd", "chm", "dtm"
	Path             string
	Extent           grid.Extent
	Nodata           float64
	Cells            int
	FiniteCells      int
	Min, Max, Mean   float64 // NaN when the raster has no finite cells
	CreatedUnixNanos int64
}

// CreateRun registers a new pipeline run and returns its generated id.
func (db *DB) CreateRun(srs string) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO raster_runs (run_id, srs, created_unix_nanos) VALUES (?, ?, ?)`,
		runID, srs, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return runID, nil
}

// nullable converts a possibly-NaN statistic to its SQL representation;
// NaN is stored as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// InsertRaster catalogs a produced raster, computing its summary
// statistics from the grid, and returns the new raster id.
func (db *DB) InsertRaster(runID, kind, path string, g *grid.Grid2D, extent grid.Extent, nodata float64) (int64, error) {
	s := grid.Summarize(g)
	res, err := db.Exec(
		`INSERT INTO rasters
			(run_id, kind, path, x_min, x_max, y_min, y_max, nodata,
			 cells, finite_cells, min_value, max_value, mean_value, created_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, kind, path,
		extent.XMin, extent.XMax, extent.YMin, extent.YMax, nodata,
		s.Cells, s.FiniteCells, nullable(s.Min), nullable(s.Max), nullable(s.Mean),
		time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert raster record: %w", err)
	}
	return res.LastInsertId()
}

// RastersForRun returns the cataloged rasters of a run, oldest first.
func (db *DB) RastersForRun(runID string) ([]RasterRecord, error) {
	rows, err := db.Query(
		`SELECT raster_id, run_id, kind, path, x_min, x_max, y_min, y_max,
		        nodata, cells, finite_cells, min_value, max_value, mean_value,
		        created_unix_nanos
		 FROM rasters WHERE run_id = ? ORDER BY raster_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rasters: %w", err)
	}
	defer rows.Close()

	var out []RasterRecord
	for rows.Next() {
		var r RasterRecord
		var minV, maxV, meanV sql.NullFloat64
		if err := rows.Scan(
			&r.RasterID, &r.RunID, &r.Kind, &r.Path,
			&r.Extent.XMin, &r.Extent.XMax, &r.Extent.YMin, &r.Extent.YMax,
			&r.Nodata, &r.Cells, &r.FiniteCells, &minV, &maxV, &meanV,
			&r.CreatedUnixNanos,
		); err != nil {
			return nil, fmt.Errorf("scan raster record: %w", err)
		}
		r.Min = fromNullable(minV)
		r.Max = fromNullable(maxV)
		r.Mean = fromNullable(meanV)
		out = append(out, r)
	}
	return out, rows.Err()
}
