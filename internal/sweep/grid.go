// Package sweep expands a Cartesian grid over soil parameters into a single
// per-member ensemble, so a whole sensitivity study runs as one simulation.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/soilsim/internal/soil"
)

var ErrUnknownParameter = errors.New("sweep: unknown parameter")

var parameterNames = []string{"capacity", "ksat", "alpha", "beta", "gamma", "eps"}

// Grid is the Cartesian product of one value list per named parameter.
type Grid struct {
	paramNames []string
	ranges     [][]float64
}

func NewGrid(params []string, ranges [][]float64) (*Grid, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("sweep: %d names for %d ranges", len(params), len(ranges))
	}
	seen := make(map[string]bool, len(params))
	for i, name := range params {
		if !known(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("sweep: parameter %q given twice", name)
		}
		seen[name] = true
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("sweep: parameter %q has no values", name)
		}
	}
	return &Grid{paramNames: params, ranges: ranges}, nil
}

// ParseAxis reads "name=v1,v2,..." or "name=lo:hi:n" (n evenly spaced values).
func ParseAxis(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("sweep: axis %q: want name=values", s)
	}
	name = strings.ToLower(strings.TrimSpace(name))

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("sweep: axis %q: %w", s, err)
		}
		if n < 1 {
			return "", nil, fmt.Errorf("sweep: axis %q: need at least one value", s)
		}
		if n == 1 {
			return name, []float64{lo}, nil
		}
		return name, floats.Span(make([]float64, n), lo, hi), nil
	}

	var values []float64
	for _, field := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("sweep: axis %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Size returns the number of grid points.
func (g *Grid) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

func (g *Grid) Names() []string { return append([]string(nil), g.paramNames...) }

// Points enumerates the grid with the last parameter varying fastest.
func (g *Grid) Points() []map[string]float64 {
	points := make([]map[string]float64, 0, g.Size())
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *Grid) collect(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.collect(depth+1, newParams, points)
	}
}

// Parameters returns one ensemble member per grid point, starting from base and
// overriding the swept parameters. Every parameter is per member.
func (g *Grid) Parameters(base soil.Member) (soil.Parameters, []map[string]float64) {
	points := g.Points()
	n := len(points)
	p := soil.Parameters{
		Capacity: make(soil.Values, n),
		Ksat:     make(soil.Values, n),
		Alpha:    make(soil.Values, n),
		Beta:     make(soil.Values, n),
		Gamma:    make(soil.Values, n),
		Eps:      make(soil.Values, n),
	}
	for i, point := range points {
		m := apply(base, point)
		p.Capacity[i] = m.Capacity
		p.Ksat[i] = m.Ksat
		p.Alpha[i] = m.Alpha
		p.Beta[i] = m.Beta
		p.Gamma[i] = m.Gamma
		p.Eps[i] = m.Eps
	}
	return p, points
}

func apply(m soil.Member, point map[string]float64) soil.Member {
	for name, v := range point {
		switch name {
		case "capacity":
			m.Capacity = v
		case "ksat":
			m.Ksat = v
		case "alpha":
			m.Alpha = v
		case "beta":
			m.Beta = v
		case "gamma":
			m.Gamma = v
		case "eps":
			m.Eps = v
		}
	}
	return m
}

// Best returns the index of the lowest score, ignoring NaN, or -1 when none is
// finite.
func Best(scores []float64) int {
	best, idx := math.Inf(1), -1
	for i, s := range scores {
		if !math.IsNaN(s) && s < best {
			best, idx = s, i
		}
	}
	return idx
}

func known(name string) bool {
	for _, n := range parameterNames {
		if n == name {
			return true
		}
	}
	return false
}
