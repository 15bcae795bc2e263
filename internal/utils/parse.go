package utils

import (
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile loads and parses a TOML file into the provided struct
func LoadTOMLFile(path string, v any) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	return nil
}

// ParseTOMLWithRecovery decodes a TOML file into a generic map so that the
// well typed sections can be picked out of a partially wrong config.
func ParseTOMLWithRecovery(path string) (map[string]any, error) {
	tempConfig := make(map[string]any)
	if _, err := toml.DecodeFile(path, &tempConfig); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return tempConfig, nil
}

// ExtractSection extracts a specific section from parsed TOML data
func ExtractSection(data map[string]any, sectionName string) (map[string]any, bool) {
	section, ok := data[sectionName].(map[string]any)
	return section, ok
}

// ExtractInt safely extracts an integer value from a map
func ExtractInt(data map[string]any, key string) (int, bool) {
	if val, ok := data[key].(int64); ok {
		return int(val), true
	}
	return 0, false
}

// ExtractBool safely extracts a bool value from a map
func ExtractBool(data map[string]any, key string) (bool, bool) {
	if val, ok := data[key].(bool); ok {
		return val, true
	}
	return false, false
}

// ExtractString safely extracts a string value from a map
func ExtractString(data map[string]any, key string) (string, bool) {
	if val, ok := data[key].(string); ok {
		return val, true
	}
	return "", false
}
