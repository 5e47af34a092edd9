// Package config loads the metric tuning parameters from JSON. Fields
// are pointers so a partial config file overrides only what it names;
// the Get* accessors supply the documented defaults for everything
// else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig is the root configuration for metric computation. The
// zero value (all nil) means "all defaults".
type TuningConfig struct {
	// Voxelizer params
	VoxelDX *float64 `json:"voxel_dx,omitempty"`
	VoxelDY *float64 `json:"voxel_dy,omitempty"`
	VoxelDZ *float64 `json:"voxel_dz,omitempty"`

	// PAD params
	BeerLambertConstant *float64 `json:"beer_lambert_constant,omitempty"`
	DropGround          *bool    `json:"drop_ground,omitempty"`

	// PAI params
	PAIMinHeight *float64 `json:"pai_min_height,omitempty"`
	PAIMaxHeight *float64 `json:"pai_max_height,omitempty"` // omit for top of volume

	// Canopy cover params
	CoverMinHeight *float64 `json:"cover_min_height,omitempty"`
	CoverK         *float64 `json:"cover_k,omitempty"`

	// Rasterizer params
	DTMResolution    *float64 `json:"dtm_resolution,omitempty"`
	CHMInterpolation *string  `json:"chm_interpolation,omitempty"` // "", nearest, linear, cubic
	CHMValidRegion   *bool    `json:"chm_valid_region,omitempty"`
	CHMCleanEdges    *bool    `json:"chm_clean_edges,omitempty"`

	// Output params
	SRS    *string  `json:"srs,omitempty"`
	Nodata *float64 `json:"nodata,omitempty"`
}

// maxConfigSize caps config files at 1MB as a safety bound.
const maxConfigSize = 1 * 1024 * 1024

// Load reads a TuningConfig from a JSON file. The path must end in
// .json; fields omitted from the file keep their defaults, so partial
// configs are safe.
func Load(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func getF(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func getB(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

func getS(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}

// GetVoxelDX returns the X voxel size (default 1 m).
func (c *TuningConfig) GetVoxelDX() float64 { return getF(c.VoxelDX, 1.0) }

// GetVoxelDY returns the Y voxel size (default 1 m).
func (c *TuningConfig) GetVoxelDY() float64 { return getF(c.VoxelDY, 1.0) }

// GetVoxelDZ returns the Z voxel size (default 1 m).
func (c *TuningConfig) GetVoxelDZ() float64 { return getF(c.VoxelDZ, 1.0) }

// GetBeerLambertConstant returns the PAD attenuation constant (default 1.0).
func (c *TuningConfig) GetBeerLambertConstant() float64 { return getF(c.BeerLambertConstant, 1.0) }

// GetDropGround reports whether the ground voxel layer is masked out of
// PAD (default true).
func (c *TuningConfig) GetDropGround() bool { return getB(c.DropGround, true) }

// GetPAIMinHeight returns the PAI lower integration bound (default 1 m).
func (c *TuningConfig) GetPAIMinHeight() float64 { return getF(c.PAIMinHeight, 1.0) }

// GetPAIMaxHeight returns the PAI upper integration bound, or nil for
// the top of the volume.
func (c *TuningConfig) GetPAIMaxHeight() *float64 { return c.PAIMaxHeight }

// GetCoverMinHeight returns the canopy threshold height (default 2 m,
// the GEDI convention).
func (c *TuningConfig) GetCoverMinHeight() float64 { return getF(c.CoverMinHeight, 2.0) }

// GetCoverK returns the cover extinction coefficient (default 0.5).
func (c *TuningConfig) GetCoverK() float64 { return getF(c.CoverK, 0.5) }

// GetDTMResolution returns the DTM cell size (default 2 m).
func (c *TuningConfig) GetDTMResolution() float64 { return getF(c.DTMResolution, 2.0) }

// GetCHMInterpolation returns the CHM gap-fill method (default "linear").
func (c *TuningConfig) GetCHMInterpolation() string { return getS(c.CHMInterpolation, "linear") }

// GetCHMValidRegion reports whether gap filling is restricted to the
// morphological valid region (default false).
func (c *TuningConfig) GetCHMValidRegion() bool { return getB(c.CHMValidRegion, false) }

// GetCHMCleanEdges reports whether interpolated edge fringes are
// blanked (default false).
func (c *TuningConfig) GetCHMCleanEdges() bool { return getB(c.CHMCleanEdges, false) }

// GetSRS returns the coordinate reference system string for raster
// sidecars (default empty).
func (c *TuningConfig) GetSRS() string { return getS(c.SRS, "") }

// GetNodata returns the nodata value substituted for NaN at raster
// write time (default -9999).
func (c *TuningConfig) GetNodata() float64 { return getF(c.Nodata, -9999) }
