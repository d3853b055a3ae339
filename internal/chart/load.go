package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry pairs a chart key with its configuration.
type Entry struct {
	Key    string
	Config Config
}

// Set is the ordered collection of chart configurations. Order follows the
// source mapping so cards appear in the order they were declared.
type Set []Entry

// Lookup returns the config stored under key.
func (s Set) Lookup(key string) (Config, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Config, true
		}
	}
	return Config{}, false
}

// LoadFile reads a YAML or JSON file mapping chart keys to configs.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read charts file %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse charts file %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a chart key -> config mapping, keeping declaration order.
func Parse(data []byte) (Set, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Set{}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of chart name to config at line %d", doc.Line)
	}

	set := make(Set, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		var cfg Config
		if err := val.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("chart %q: %w", key.Value, err)
		}
		set = append(set, Entry{Key: key.Value, Config: cfg})
	}
	return set, nil
}
