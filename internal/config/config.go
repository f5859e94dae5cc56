// Package config holds the startup constants of the simulation: grid dimensions, display cell size,
// tick rate and the initial goal and starts.
//
// Values come from Default, optionally overridden by a YAML file (Load) and then by a configuration
// string (ApplyConfigString), e.g. "width=32,height=24,goal=4:5,starts=11:5;3:3".
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/janpfeifer/wavepath/internal/geometry"
	"github.com/janpfeifer/wavepath/internal/grid"
	"github.com/janpfeifer/wavepath/internal/parameters"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config of a simulation.
type Config struct {
	// Width and Height of the grid, in cells. The border is always blocked.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// CellSize and BorderWidth in display units, for the geometry handed to renderers.
	CellSize    float32 `yaml:"cell_size"`
	BorderWidth float32 `yaml:"border_width"`

	// TicksPerSecond is the maximum rate of recomputes.
	TicksPerSecond int `yaml:"ticks_per_second"`

	// Workers tracing agent paths in parallel. 0 or 1 means sequential.
	Workers int `yaml:"workers"`

	Goal   grid.Cell   `yaml:"goal"`
	Starts []grid.Cell `yaml:"starts"`
}

// Default configuration: a 16x16 grid with the goal at (4, 5) and one agent at (11, 5).
func Default() Config {
	return Config{
		Width:          16,
		Height:         16,
		CellSize:       45,
		BorderWidth:    1,
		TicksPerSecond: 20,
		Workers:        1,
		Goal:           grid.Cell{4, 5},
		Starts:         []grid.Cell{{11, 5}},
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep their Default values.
func Load(filePath string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(filePath)
	if err != nil {
		return c, errors.Wrapf(err, "failed to read configuration file %q", filePath)
	}
	if err = yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrapf(err, "failed to parse configuration file %q", filePath)
	}
	if err = c.Validate(); err != nil {
		return c, errors.WithMessagef(err, "invalid configuration file %q", filePath)
	}
	return c, nil
}

// ApplyConfigString overrides the configuration with the values in a "key=value,..." string.
// Cells are given as "x:y", and starts as a ";" separated list of cells.
func (c *Config) ApplyConfigString(configStr string) error {
	params := parameters.NewFromConfigString(configStr)
	var err error
	if c.Width, err = parameters.PopParamOr(params, "width", c.Width); err != nil {
		return err
	}
	if c.Height, err = parameters.PopParamOr(params, "height", c.Height); err != nil {
		return err
	}
	if c.CellSize, err = parameters.PopParamOr(params, "cell_size", c.CellSize); err != nil {
		return err
	}
	if c.BorderWidth, err = parameters.PopParamOr(params, "border_width", c.BorderWidth); err != nil {
		return err
	}
	if c.TicksPerSecond, err = parameters.PopParamOr(params, "ticks_per_second", c.TicksPerSecond); err != nil {
		return err
	}
	if c.Workers, err = parameters.PopParamOr(params, "workers", c.Workers); err != nil {
		return err
	}
	goalStr, err := parameters.PopParamOr(params, "goal", "")
	if err != nil {
		return err
	}
	if goalStr != "" {
		if c.Goal, err = ParseCell(goalStr); err != nil {
			return errors.WithMessage(err, "configuration goal")
		}
	}
	if startsStr, found := params["starts"]; found {
		delete(params, "starts")
		c.Starts = nil
		for _, startStr := range strings.Split(startsStr, ";") {
			if startStr == "" {
				continue
			}
			start, err := ParseCell(startStr)
			if err != nil {
				return errors.WithMessage(err, "configuration starts")
			}
			c.Starts = append(c.Starts, start)
		}
	}
	if err = parameters.CheckAllUsed(params); err != nil {
		return err
	}
	return c.Validate()
}

// ParseCell parses a cell given as "x:y".
func ParseCell(s string) (grid.Cell, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return grid.Cell{}, errors.Errorf("invalid cell %q, expected \"x:y\"", s)
	}
	var c grid.Cell
	for ii, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return grid.Cell{}, errors.Wrapf(err, "invalid cell %q", s)
		}
		c[ii] = v
	}
	return c, nil
}

// Validate checks the configuration is usable: positive dimensions and rates, and goal and starts
// within the grid.
func (c *Config) Validate() error {
	if c.Width < 3 || c.Height < 3 {
		return errors.Errorf("grid must be at least 3x3 (the border is always blocked), got %dx%d", c.Width, c.Height)
	}
	if c.CellSize <= 0 || c.BorderWidth < 0 || c.BorderWidth >= c.CellSize {
		return errors.Errorf("invalid cell_size=%g / border_width=%g", c.CellSize, c.BorderWidth)
	}
	if c.TicksPerSecond <= 0 {
		return errors.Errorf("ticks_per_second must be > 0, got %d", c.TicksPerSecond)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	inBounds := func(cell grid.Cell) bool {
		return cell.X() >= 0 && cell.X() < c.Width && cell.Y() >= 0 && cell.Y() < c.Height
	}
	if !inBounds(c.Goal) {
		return errors.Errorf("goal %s out of the %dx%d grid", c.Goal, c.Width, c.Height)
	}
	for _, start := range c.Starts {
		if !inBounds(start) {
			return errors.Errorf("start %s out of the %dx%d grid", start, c.Width, c.Height)
		}
	}
	return nil
}

// NewGrid creates the initial grid: no obstacles, the configured goal and starts.
func (c *Config) NewGrid() *grid.Grid {
	g := grid.New(c.Width, c.Height, c.Goal)
	for _, start := range c.Starts {
		g.AddStart(start)
	}
	return g
}

// Layout returns the display layout for the configured cell size.
func (c *Config) Layout() geometry.Layout {
	return geometry.Layout{CellSize: c.CellSize, BorderWidth: c.BorderWidth}
}
