package seed

import (
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Config holds parameters shared by the registered initializers.
type Config struct {
	Seed    int64
	Density float64
	// Pattern is a builtin name or a path to an .rle file.
	Pattern string
	X, Y    int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Seed: 1, Density: 0.1, Pattern: "glider"}
}

// FromMap populates a Config from a string map.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
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
			c.X = parsed
		}
	}
	if v, ok := cfg["y"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Y = parsed
		}
	}
	return c
}

// Factory builds an Initializer from a string map.
type Factory func(cfg map[string]string) (Initializer, error)

var initializers = map[string]Factory{}

// Register adds an initializer factory under name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	initializers[name] = f
}

// Initializers exposes the registry.
func Initializers() map[string]Factory {
	return initializers
}

// Names lists registered initializers in sorted order.
func Names() []string {
	names := make([]string, 0, len(initializers))
	for name := range initializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New looks up name in the registry and builds it from cfg.
func New(name string, cfg map[string]string) (Initializer, error) {
	f, ok := initializers[name]
	if !ok {
		return nil, fmt.Errorf("seed: unknown initializer %q (have %v)", name, Names())
	}
	return f(cfg)
}

// LoadShape resolves a builtin pattern name or reads an RLE file.
func LoadShape(name string) (Shape, error) {
	if s, ok := Builtin(name); ok {
		return s, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return Shape{}, fmt.Errorf("seed: pattern %q is neither builtin nor readable: %w", name, err)
	}
	defer f.Close()
	s, err := ParseRLE(f)
	if err != nil {
		return Shape{}, fmt.Errorf("seed: %s: %w", name, err)
	}
	return s, nil
}

func init() {
	Register("empty", func(map[string]string) (Initializer, error) {
		return Empty{}, nil
	})
	Register("random", func(cfg map[string]string) (Initializer, error) {
		c := FromMap(cfg)
		return Random{Seed: c.Seed, Density: c.Density}, nil
	})
	Register("pattern", func(cfg map[string]string) (Initializer, error) {
		c := FromMap(cfg)
		s, err := LoadShape(c.Pattern)
		if err != nil {
			return nil, err
		}
		return Pattern{Shape: s, X: c.X, Y: c.Y}, nil
	})
}
