package world

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// BlockConfig declares one palette entry.
type BlockConfig struct {
	Name         string  `json:"name" yaml:"name"`
	Shape        Shape   `json:"shape" yaml:"shape"`
	Slipperiness float64 `json:"slipperiness" yaml:"slipperiness"`
}

// FillConfig places blocks in an inclusive cuboid.
type FillConfig struct {
	From  cube.Pos `json:"from" yaml:"from"`
	To    cube.Pos `json:"to" yaml:"to"`
	Block string   `json:"block" yaml:"block"`
}

// Config describes a world: its palette and the fills applied in order.
type Config struct {
	Palette []BlockConfig `json:"palette" yaml:"palette"`
	Fills   []FillConfig  `json:"fills" yaml:"fills"`
}

// DefaultPalette holds the stock block kinds.
func DefaultPalette() []BlockConfig {
	return []BlockConfig{
		{Name: "stone", Shape: ShapeFull, Slipperiness: DefaultSlipperiness},
		{Name: "ice", Shape: ShapeFull, Slipperiness: 0.98},
		{Name: "slime", Shape: ShapeFull, Slipperiness: 0.8},
		{Name: "slab", Shape: ShapeBottomSlab, Slipperiness: DefaultSlipperiness},
		{Name: "fence", Shape: ShapeFence, Slipperiness: DefaultSlipperiness},
	}
}

// DefaultConfig is a 9x9 stone floor with a wall along its east edge.
func DefaultConfig() Config {
	return Config{
		Palette: DefaultPalette(),
		Fills: []FillConfig{
			{From: cube.Pos{-4, -1, -4}, To: cube.Pos{4, -1, 4}, Block: "stone"},
			{From: cube.Pos{4, 0, -4}, To: cube.Pos{4, 3, 4}, Block: "stone"},
		},
	}
}

// Validate validates the world configuration
func (c Config) Validate() error {
	names := make(map[string]struct{}, len(c.Palette))
	for i, b := range c.Palette {
		if b.Name == "" {
			return fmt.Errorf("%w: palette entry %d has no name", ErrUnknownBlock, i)
		}
		if _, ok := names[b.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.Name)
		}
		if _, err := b.Shape.Boxes(); err != nil {
			return err
		}
		if b.Slipperiness < 0 || b.Slipperiness > 1 {
			return fmt.Errorf("%w: slipperiness of %s must be in [0, 1]", ErrInvalidSlip, b.Name)
		}
		names[b.Name] = struct{}{}
	}
	for i, f := range c.Fills {
		if _, ok := names[f.Block]; !ok {
			return fmt.Errorf("%w: fill %d uses %q", ErrUnknownBlock, i, f.Block)
		}
	}
	return nil
}

// Build creates a world from c.
func Build(c Config) (*World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w := New()
	for _, b := range c.Palette {
		if err := w.Register(b.Name, b.Shape, b.Slipperiness); err != nil {
			return nil, err
		}
	}
	for i, f := range c.Fills {
		if _, err := w.Fill(f.From, f.To, f.Block); err != nil {
			return nil, fmt.Errorf("fill %d: %w", i, err)
		}
	}
	return w, nil
}
