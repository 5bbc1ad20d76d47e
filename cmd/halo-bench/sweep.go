package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"halo-life/pkg/driver"
	"halo-life/pkg/grid"
	"halo-life/pkg/seed"
)

type scenario struct {
	dimX, dimY int
	size       int
}

func (s scenario) String() string {
	return fmt.Sprintf("%dx%d on %dx%d", s.dimX, s.dimY, s.size, s.size)
}

type scenarioResult struct {
	scenario
	millis []float64
	mean   float64
	std    float64
	err    error
}

type sweep struct {
	gens     int
	repeats  int
	diagonal bool
	seed     int64
	density  float64
}

// parseDimsList reads "1x1,2x1,...".
func parseDimsList(s string) ([][2]int, error) {
	var out [][2]int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		x, y, err := grid.ParseDims(f, 2)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]int{x, y})
	}
	return out, nil
}

func parseSizes(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("bad board size %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

func scenarios(dims [][2]int, sizes []int) []scenario {
	var out []scenario
	for _, size := range sizes {
		for _, d := range dims {
			out = append(out, scenario{dimX: d[0], dimY: d[1], size: size})
		}
	}
	return out
}

// run times one scenario sw.repeats times.
func (sw sweep) run(ctx context.Context, sc scenario) scenarioResult {
	res := scenarioResult{scenario: sc}
	cfg := driver.Config{
		Grid:           grid.GlobalGrid{Width: sc.size, Height: sc.size},
		Topology:       grid.Topology{DimX: sc.dimX, DimY: sc.dimY, Periodic: true, NDims: 2},
		MaxGenerations: sw.gens,
		Diagonal:       sw.diagonal,
	}
	in := seed.Random{Seed: sw.seed, Density: sw.density}
	for i := 0; i < sw.repeats; i++ {
		start := time.Now()
		if _, _, err := driver.RunLocal(ctx, cfg, in); err != nil {
			res.err = err
			return res
		}
		res.millis = append(res.millis, float64(time.Since(start).Microseconds())/1000)
	}
	if len(res.millis) < 2 {
		// A single sample has no spread.
		res.mean = stat.Mean(res.millis, nil)
		return res
	}
	res.mean, res.std = stat.MeanStdDev(res.millis, nil)
	return res
}

// runAll fans scenarios out to workers and returns results in input order.
func (sw sweep) runAll(ctx context.Context, scs []scenario, workers int) []scenarioResult {
	if workers <= 0 {
		workers = 1
	}
	type job struct {
		idx int
		sc  scenario
	}
	jobs := make(chan job)
	results := make([]scenarioResult, len(scs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = sw.run(ctx, j.sc)
			}
		}()
	}
	for i, sc := range scs {
		jobs <- job{idx: i, sc: sc}
	}
	close(jobs)
	wg.Wait()
	return results
}

// writeCSV emits one row per timed repeat.
func writeCSV(w io.Writer, gens int, results []scenarioResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"px", "py", "nx", "ny", "generations", "repeat", "millis"}); err != nil {
		return err
	}
	for _, r := range results {
		for i, ms := range r.millis {
			row := []string{
				strconv.Itoa(r.dimX), strconv.Itoa(r.dimY),
				strconv.Itoa(r.size / r.dimX), strconv.Itoa(r.size / r.dimY),
				strconv.Itoa(gens), strconv.Itoa(i),
				strconv.FormatFloat(ms, 'f', 3, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// fastest returns the results sorted by mean time, failures last.
func fastest(results []scenarioResult) []scenarioResult {
	out := append([]scenarioResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].err == nil) != (out[j].err == nil) {
			return out[i].err == nil
		}
		return out[i].mean < out[j].mean
	})
	return out
}
