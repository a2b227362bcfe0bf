// Package config loads and validates the YAML run configuration: indicator
// and value definitions, attribute tables, group definitions, depth paths,
// and the experiment factor plan.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full YAML configuration surface.
type Config struct {
	Indicators  []IndicatorConfig  `yaml:"indicators"`
	Values      []ValueConfig      `yaml:"values"`
	Attributes  AttributesConfig   `yaml:"attributes"`
	Groups      []GroupConfig      `yaml:"groups"`
	Depth       DepthConfig        `yaml:"depth"`
	Experiments []ExperimentConfig `yaml:"experiments"`
}

// IndicatorConfig is one weighted indicator definition.
type IndicatorConfig struct {
	ID        string                    `yaml:"id"`
	Name      string                    `yaml:"name"`
	Formula   string                    `yaml:"formula"`
	Unit      string                    `yaml:"unit"`
	Direction string                    `yaml:"direction"`
	Weight    float64                   `yaml:"weight"`
	Threshold float64                   `yaml:"threshold"`
	Level     string                    `yaml:"level"`
	Mode      string                    `yaml:"mode"`
	Variables map[string]VariableConfig `yaml:"variables"`
}

// ValueConfig is one supporting economic calculation.
type ValueConfig struct {
	ID        string                    `yaml:"id"`
	Name      string                    `yaml:"name"`
	Formula   string                    `yaml:"formula"`
	Level     string                    `yaml:"level"`
	Category  string                    `yaml:"category"`
	Variables map[string]VariableConfig `yaml:"variables"`
}

// VariableConfig declares how one formula variable resolves.
type VariableConfig struct {
	Source    string `yaml:"source"`
	Attribute string `yaml:"attribute"`
}

// AttributesConfig carries the external attribute tables.
type AttributesConfig struct {
	Components []ComponentAttrConfig `yaml:"components"`
	Resources  []RateTableConfig     `yaml:"resources"`
	Systems    []RateTableConfig     `yaml:"systems"`
}

// ComponentAttrConfig is one component attribute entry.
type ComponentAttrConfig struct {
	Name   string                  `yaml:"name"`
	Fixed  map[string]float64      `yaml:"fixed"`
	Banded map[string][]BandConfig `yaml:"banded"`
}

// BandConfig is one quality band of a banded attribute.
type BandConfig struct {
	Option string  `yaml:"option"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Value  float64 `yaml:"value"`
}

// RateTableConfig is a flat id -> rates entry (resources, systems).
type RateTableConfig struct {
	ID    string             `yaml:"id"`
	Rates map[string]float64 `yaml:"rates"`
}

// GroupConfig is one group definition.
type GroupConfig struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Variables []GroupVarConfig `yaml:"variables"`
	Metrics   []string         `yaml:"metrics"`
}

// GroupVarConfig is one grouping variable, raw or derived.
type GroupVarConfig struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Source  string         `yaml:"source"`
	Buckets []BucketConfig `yaml:"buckets"`
}

// BucketConfig is one derived-variable bucket.
type BucketConfig struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// DepthConfig configures the depth/break-even analysis.
type DepthConfig struct {
	ProfitValue string       `yaml:"profit_value"`
	Paths       []PathConfig `yaml:"paths"`
}

// PathConfig is the step sequence of one product type.
type PathConfig struct {
	ProductType string       `yaml:"product_type"`
	Baseline    float64      `yaml:"baseline"`
	Steps       []StepConfig `yaml:"steps"`
}

// StepConfig is one disassembly step.
type StepConfig struct {
	ID         string   `yaml:"id"`
	Branch     string   `yaml:"branch"`
	Parent     string   `yaml:"parent"`
	Components []string `yaml:"components"`
}

// ExperimentConfig is one experiment factor tuple. ID may be empty; a
// deterministic hash of the factors is assigned then.
type ExperimentConfig struct {
	ID                 string  `yaml:"id"`
	System             string  `yaml:"system"`
	Portfolio          string  `yaml:"portfolio"`
	Automation         string  `yaml:"automation"`
	AutomationFraction float64 `yaml:"automation_fraction"`
}

// Load reads, parses, and validates a YAML configuration file. Unknown
// fields are rejected so typos surface at load time.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
