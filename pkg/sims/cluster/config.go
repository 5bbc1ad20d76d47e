package cluster

import (
	"strconv"

	"halo-life/pkg/grid"
)

// Config holds parameters for an in-process cluster run.
type Config struct {
	Width    int
	Height   int
	DimX     int
	DimY     int
	Periodic bool
	Diagonal bool
	Converge bool
	Workers  int
	// Init names a registered seed initializer.
	Init     string
	Density  float64
	Pattern  string
	PatternX int
	PatternY int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Width: 256, Height: 256,
		DimX: 2, DimY: 2,
		Periodic: true,
		Converge: true,
		Workers:  1,
		Init:     "random",
		Density:  0.1,
		Pattern:  "glider",
	}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["dims"]; ok {
		if x, y, err := grid.ParseDims(v, 2); err == nil {
			c.DimX, c.DimY = x, y
		}
	}
	for key, dst := range map[string]*bool{"periodic": &c.Periodic, "diagonal": &c.Diagonal, "converge": &c.Converge} {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["init"]; ok && v != "" {
		c.Init = v
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	if v, ok := cfg["pattern"]; ok && v != "" {
		c.Pattern = v
	}
	if v, ok := cfg["x"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.PatternX = parsed
		}
	}
	if v, ok := cfg["y"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.PatternY = parsed
		}
	}
	return c
}
