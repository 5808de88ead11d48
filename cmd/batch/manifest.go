package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/samirrijal/geodist/internal/core/usecases"
	"github.com/samirrijal/geodist/internal/pkg/geospatial"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source string      `json:"source"`
	Pairs  []PairEntry `json:"pairs"`
}

// PairEntry is one calculation. Fields uses the same keys as the HTTP API
// (lat1_d, lon1_rad, h1, ...).
type PairEntry struct {
	Name   string          `json:"name"`
	Mode   string          `json:"mode,omitempty"`
	Fields usecases.Fields `json:"fields"`
}

// Result is one line of output. The distances are nil only when Error is set,
// so identical points still report 0.
type Result struct {
	Name              string   `json:"name"`
	SurfaceDistance   *float64 `json:"surface_distance,omitempty"`
	StraightDistance  *float64 `json:"straight_distance,omitempty"`
	FormattedSurface  string   `json:"formatted_surface_distance,omitempty"`
	FormattedStraight string   `json:"formatted_straight_distance,omitempty"`
	Cached            bool     `json:"cached,omitempty"`
	Error             string   `json:"error,omitempty"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ---------------------------------------------------------------------------
// Run all pairs
// ---------------------------------------------------------------------------

// runAll computes every pair with at most workers calculations in flight.
// Results keep manifest order; a failing pair does not stop the others.
func runAll(ctx context.Context, svc *usecases.DistanceService, pairs []PairEntry, workers int) []Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(pairs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p PairEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = runPair(ctx, svc, p)
		}(i, p)
	}

	wg.Wait()
	return results
}

func runPair(ctx context.Context, svc *usecases.DistanceService, p PairEntry) Result {
	res := Result{Name: p.Name}

	mode := p.Mode
	if mode == "" {
		mode = p.Fields["mode"]
	}
	if mode == "" {
		mode = "dms"
	}

	calc, err := svc.Calculate(ctx, mode, p.Fields)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	d := calc.Distances
	res.SurfaceDistance = &d.SurfaceMeters
	res.StraightDistance = &d.StraightMeters
	res.FormattedSurface = geospatial.FormatDistance(d.SurfaceMeters)
	res.FormattedStraight = geospatial.FormatDistance(d.StraightMeters)
	res.Cached = calc.Cached
	return res
}
