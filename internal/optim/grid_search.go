package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/birdsim/internal/config"
	"github.com/san-kum/birdsim/internal/experiment"
)

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64
	Value  float64
}

// GridSearch evaluates every combination of knob values against a base
// config and keeps the one that minimises a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	points     []Point
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points returns every cell evaluated by the last Search, in visit order.
func (g *GridSearch) Points() []Point {
	return g.points
}

// Search runs one experiment per cell. Pass maximize to keep the largest
// metric value instead of the smallest.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
	maximize bool,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	g.points = g.points[:0]

	sign := 1.0
	if maximize {
		sign = -1
	}
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, sign, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("grid: no cell produced %q", metricName)
	}

	return bestParams, sign * best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	sign float64,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		if err := cfg.Apply(current); err != nil {
			return fmt.Errorf("grid %v: %w", current, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("grid: unknown metric %q", metricName)
		}
		g.points = append(g.points, Point{Params: current, Value: val})
		if sign*val < *best {
			*best = sign * val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, sign, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
