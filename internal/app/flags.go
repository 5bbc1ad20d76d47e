package app

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"halo-life/pkg/driver"
	"halo-life/pkg/grid"
)

// Config represents the command-line parameters shared by the runner, the
// viewer and the bench harness.
type Config struct {
	Sim   string
	Scale int
	TPS   int
	HUD   int
	Seed  int64

	Width    int
	Height   int
	Procs    int
	Dims     string
	NDims    int
	Periodic bool
	Diagonal bool
	Converge bool
	Gens     int
	Workers  int

	Init     string
	Density  float64
	Pattern  string
	PatternX int
	PatternY int

	Snapshots string
	Every     int

	Transport string
	Rank      int
	Peers     string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Sim: "cluster", Scale: 3, TPS: 30, HUD: 220, Seed: 42,
		Width: 256, Height: 256, Procs: 4, NDims: 2,
		Periodic: true, Converge: true, Gens: 1000, Workers: 1,
		Init: "random", Density: 0.1, Pattern: "glider",
		Every: 1, Transport: "local",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to view")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.HUD, "hud", c.HUD, "stats panel width in pixels, 0 hides it")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "global seed for random initialization")

	fs.IntVar(&c.Width, "w", c.Width, "global grid width")
	fs.IntVar(&c.Height, "h", c.Height, "global grid height")
	fs.IntVar(&c.Procs, "np", c.Procs, "participant count when -dims is empty")
	fs.StringVar(&c.Dims, "dims", c.Dims, "decomposition as NX or NXxNY, empty picks a near-square one")
	fs.IntVar(&c.NDims, "ndims", c.NDims, "topology dimensionality (1 or 2)")
	fs.BoolVar(&c.Periodic, "periodic", c.Periodic, "wrap the grid into a torus")
	fs.BoolVar(&c.Diagonal, "diagonal", c.Diagonal, "exchange and count corner halo cells")
	fs.BoolVar(&c.Converge, "converge", c.Converge, "stop at the first generation that changes nothing")
	fs.IntVar(&c.Gens, "gens", c.Gens, "maximum number of generations")
	fs.IntVar(&c.Workers, "workers", c.Workers, "row bands evolved in parallel per participant")

	fs.StringVar(&c.Init, "init", c.Init, "initializer: empty, random or pattern")
	fs.Float64Var(&c.Density, "density", c.Density, "live cell probability for random init")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "builtin pattern name or .rle path")
	fs.IntVar(&c.PatternX, "at-x", c.PatternX, "pattern column")
	fs.IntVar(&c.PatternY, "at-y", c.PatternY, "pattern row")

	fs.StringVar(&c.Snapshots, "vtk", c.Snapshots, "directory for VTK snapshots, empty disables them")
	fs.IntVar(&c.Every, "every", c.Every, "snapshot interval in generations")

	fs.StringVar(&c.Transport, "transport", c.Transport, "local (all participants in process) or tcp")
	fs.IntVar(&c.Rank, "rank", c.Rank, "participant index for the tcp transport")
	fs.StringVar(&c.Peers, "peers", c.Peers, "comma separated host:port of every participant, by rank")
}

// PeerList splits Peers.
func (c *Config) PeerList() []string {
	var out []string
	for _, p := range strings.Split(c.Peers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Topology resolves the decomposition. With tcp the participant count is
// the number of peers.
func (c *Config) Topology() (grid.Topology, error) {
	n := c.Procs
	if c.Transport == "tcp" {
		n = len(c.PeerList())
	}
	var dimX, dimY int
	switch {
	case c.Dims != "":
		var err error
		if dimX, dimY, err = grid.ParseDims(c.Dims, c.NDims); err != nil {
			return grid.Topology{}, err
		}
	case c.NDims == 1:
		dimX, dimY = n, 1
	default:
		dimX, dimY = grid.FactorDims(n)
	}
	t := grid.Topology{DimX: dimX, DimY: dimY, Periodic: c.Periodic, NDims: c.NDims}
	if c.Transport == "tcp" && t.Participants() != n {
		return grid.Topology{}, &grid.ConfigurationError{
			Participant: c.Rank,
			Reason:      fmt.Sprintf("dims %dx%d need %d peers, got %d", dimX, dimY, t.Participants(), n),
		}
	}
	return t, nil
}

// Validate checks everything that can be checked before any communication.
func (c *Config) Validate() error {
	if c.Gens < 0 {
		return &grid.ConfigurationError{Participant: -1, Reason: "negative generation count"}
	}
	if c.Density < 0 || c.Density > 1 {
		return &grid.ConfigurationError{Participant: -1, Reason: fmt.Sprintf("density %v outside [0,1]", c.Density)}
	}
	switch c.Transport {
	case "local":
	case "tcp":
		if peers := c.PeerList(); c.Rank < 0 || c.Rank >= len(peers) {
			return &grid.ConfigurationError{Participant: c.Rank, Reason: fmt.Sprintf("rank outside %d peers", len(peers))}
		}
	default:
		return &grid.ConfigurationError{Participant: -1, Reason: fmt.Sprintf("unknown transport %q", c.Transport)}
	}
	t, err := c.Topology()
	if err != nil {
		return err
	}
	return t.Validate(grid.GlobalGrid{Width: c.Width, Height: c.Height})
}

// DriverConfig builds the run description shared by every participant.
func (c *Config) DriverConfig() (driver.Config, error) {
	if err := c.Validate(); err != nil {
		return driver.Config{}, err
	}
	t, err := c.Topology()
	if err != nil {
		return driver.Config{}, err
	}
	return driver.Config{
		Grid:             grid.GlobalGrid{Width: c.Width, Height: c.Height},
		Topology:         t,
		MaxGenerations:   c.Gens,
		CheckConvergence: c.Converge,
		Diagonal:         c.Diagonal,
		Workers:          c.Workers,
		SnapshotEvery:    c.Every,
	}, nil
}

// SeedParams returns the map consumed by the seed registry.
func (c *Config) SeedParams() map[string]string {
	return map[string]string{
		"seed":    strconv.FormatInt(c.Seed, 10),
		"density": strconv.FormatFloat(c.Density, 'g', -1, 64),
		"pattern": c.Pattern,
		"x":       strconv.Itoa(c.PatternX),
		"y":       strconv.Itoa(c.PatternY),
	}
}

// SimParams returns the map consumed by the sim registry.
func (c *Config) SimParams() map[string]string {
	m := c.SeedParams()
	m["w"] = strconv.Itoa(c.Width)
	m["h"] = strconv.Itoa(c.Height)
	m["periodic"] = strconv.FormatBool(c.Periodic)
	m["diagonal"] = strconv.FormatBool(c.Diagonal)
	m["converge"] = strconv.FormatBool(c.Converge)
	m["workers"] = strconv.Itoa(c.Workers)
	m["init"] = c.Init
	m["bounded"] = strconv.FormatBool(!c.Periodic)
	if t, err := c.Topology(); err == nil {
		m["dims"] = fmt.Sprintf("%dx%d", t.DimX, t.DimY)
	}
	return m
}
