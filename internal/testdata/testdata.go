// Package testdata holds a small seed workspace (channels, messages) used
// across package tests as a shared realistic fixture instead of every
// test hand-assembling its own ad hoc entities. go.yaml.in/yaml/v2
// matches the teacher's own choice of fixture format.
package testdata

import (
	_ "embed"

	"go.yaml.in/yaml/v2"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedChannel is one fixture channel entry.
type SeedChannel struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Service  string `yaml:"service"`
	Category string `yaml:"category"`
	Starred  bool   `yaml:"starred"`
}

// SeedMessage is one fixture message entry.
type SeedMessage struct {
	ID            string `yaml:"id"`
	SourceChannel string `yaml:"source_channel"`
	AuthorID      string `yaml:"author_id"`
	Content       string `yaml:"content"`
	Timestamp     int64  `yaml:"timestamp"`
}

// Seed is the full fixture workspace.
type Seed struct {
	Channels []SeedChannel `yaml:"channels"`
	Messages []SeedMessage `yaml:"messages"`
}

// LoadSeed parses the embedded seed.yaml fixture.
func LoadSeed() (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(seedYAML, &s); err != nil {
		return Seed{}, err
	}
	return s, nil
}
