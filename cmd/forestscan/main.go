// Command forestscan computes canopy structure rasters (PAI, canopy
// cover, FHD, CHM, DTM) from a height-normalized point table and writes
// them as Esri ASCII grids, optionally cataloging the outputs in a
// sqlite database.
//
// The input is a delimited text table with a header row naming the
// point columns (X, Y, Z, HeightAboveGround, Classification,
// PointSourceId); decoding LAS/LAZ and height normalization are the
// point-engine's job upstream of this tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/treeline-data/forestscan/internal/canopy"
	"github.com/treeline-data/forestscan/internal/config"
	"github.com/treeline-data/forestscan/internal/db"
	"github.com/treeline-data/forestscan/internal/export"
	"github.com/treeline-data/forestscan/internal/grid"
	"github.com/treeline-data/forestscan/internal/monitoring"
	"github.com/treeline-data/forestscan/internal/pointcloud"
	"github.com/treeline-data/forestscan/internal/raster"
	"github.com/treeline-data/forestscan/internal/version"
	"github.com/treeline-data/forestscan/internal/voxel"
)

var (
	pointsPath  = flag.String("points", "", "Input point table (required)")
	groundPath  = flag.String("ground", "", "Optional ground-point table for the DTM; defaults to class-2 points from -points")
	outDir      = flag.String("out", ".", "Output directory for rasters")
	dbPath      = flag.String("db", "", "Optional raster catalog database path")
	configPath  = flag.String("config", "", "Optional tuning config (JSON)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("forestscan %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *pointsPath == "" {
		log.Fatal("-points is required")
	}
	if err := run(); err != nil {
		log.Fatalf("forestscan: %v", err)
	}
}

func run() error {
	cfg := &config.TuningConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	batch, err := readPointTable(*pointsPath)
	if err != nil {
		return fmt.Errorf("read points: %w", err)
	}
	monitoring.Logf("loaded %d points from %s", batch.Len(), *pointsPath)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	sink := &export.ASCWriter{Dir: *outDir}

	var catalog *db.DB
	runID := ""
	if *dbPath != "" {
		catalog, err = db.Open(*dbPath)
		if err != nil {
			return err
		}
		defer catalog.Close()
		runID, err = catalog.CreateRun(cfg.GetSRS())
		if err != nil {
			return err
		}
		monitoring.Logf("catalog run %s", runID)
	}

	write := func(kind string, g *grid.Grid2D, extent grid.Extent) error {
		if err := sink.WriteRaster(kind, g, extent, cfg.GetSRS(), cfg.GetNodata()); err != nil {
			return fmt.Errorf("write %s raster: %w", kind, err)
		}
		s := grid.Summarize(g)
		monitoring.Logf("%s: %d/%d finite cells, range [%g, %g]", kind, s.FiniteCells, s.Cells, s.Min, s.Max)
		if catalog != nil {
			path := fmt.Sprintf("%s/%s.asc", *outDir, kind)
			if _, err := catalog.InsertRaster(runID, kind, path, g, extent, cfg.GetNodata()); err != nil {
				return err
			}
		}
		return nil
	}

	// Vertical-profile metrics over the voxelized return counts.
	res := voxel.Resolution{DX: cfg.GetVoxelDX(), DY: cfg.GetVoxelDY(), DZ: cfg.GetVoxelDZ()}
	counts, extent, err := voxel.Assign(batch, res)
	if err != nil {
		return fmt.Errorf("voxelize: %w", err)
	}
	monitoring.Logf("voxel grid %dx%dx%d over [%g,%g]x[%g,%g]",
		counts.NX, counts.NY, counts.NZ, extent.XMin, extent.XMax, extent.YMin, extent.YMax)

	pad, err := canopy.PAD(counts, canopy.PADParams{
		VoxelHeight:         res.DZ,
		BeerLambertConstant: cfg.GetBeerLambertConstant(),
		DropGround:          cfg.GetDropGround(),
	})
	if err != nil {
		return fmt.Errorf("pad: %w", err)
	}

	pai, err := canopy.PAI(pad, canopy.PAIParams{
		VoxelHeight: res.DZ,
		MinHeight:   cfg.GetPAIMinHeight(),
		MaxHeight:   cfg.GetPAIMaxHeight(),
	})
	if err != nil {
		return fmt.Errorf("pai: %w", err)
	}
	if err := write("pai", pai, extent); err != nil {
		return err
	}

	cover, err := canopy.Cover(pad, canopy.CoverParams{
		VoxelHeight: res.DZ,
		MinHeight:   cfg.GetCoverMinHeight(),
		MaxHeight:   cfg.GetPAIMaxHeight(),
		K:           cfg.GetCoverK(),
	})
	if err != nil {
		return fmt.Errorf("canopy cover: %w", err)
	}
	if err := write("cover", cover, extent); err != nil {
		return err
	}

	if err := write("fhd", canopy.FHD(counts), extent); err != nil {
		return err
	}

	// Height rasters.
	chm, chmExtent, err := raster.CHM(batch, raster.CHMParams{
		XResolution:       res.DX,
		YResolution:       res.DY,
		Interpolation:     raster.Interpolation(cfg.GetCHMInterpolation()),
		InterpValidRegion: cfg.GetCHMValidRegion(),
		InterpCleanEdges:  cfg.GetCHMCleanEdges(),
	})
	if err != nil {
		return fmt.Errorf("chm: %w", err)
	}
	if err := write("chm", chm, chmExtent); err != nil {
		return err
	}

	ground, err := groundBatch(batch)
	if err != nil {
		return err
	}
	if ground.Len() == 0 {
		monitoring.Logf("no ground points; skipping DTM")
		return nil
	}
	dtm, dtmExtent, err := raster.DTM([]*pointcloud.Batch{ground}, cfg.GetDTMResolution())
	if err != nil {
		return fmt.Errorf("dtm: %w", err)
	}
	return write("dtm", dtm, dtmExtent)
}

// groundBatch selects the DTM input: an explicit ground table when
// given, otherwise the class-2 points of the main batch.
func groundBatch(batch *pointcloud.Batch) (*pointcloud.Batch, error) {
	if *groundPath != "" {
		g, err := readPointTable(*groundPath)
		if err != nil {
			return nil, fmt.Errorf("read ground points: %w", err)
		}
		return g, nil
	}
	if batch.Classification == nil {
		return &pointcloud.Batch{}, nil
	}
	return batch.GroundPoints(), nil
}
