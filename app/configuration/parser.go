package configuration

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// lowerKeys returns a copy of m with every key lower-cased, nested maps included.
// Keys that only differ in case collapse into one, the last one visited wins.
func lowerKeys(m map[string]interface{}) map[string]interface{} {
	lowered := make(map[string]interface{}, len(m))
	for key, value := range m {
		switch nested := value.(type) {
		case map[string]interface{}:
			value = lowerKeys(nested)
		case map[interface{}]interface{}:
			// nested YAML mappings are decoded with interface keys
			value = lowerKeys(cast.ToStringMap(nested))
		}

		lowered[strings.ToLower(key)] = value
	}

	return lowered
}

func unmarshalLower(data []byte, decode func([]byte, interface{}) error) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := decode(data, &raw); err != nil {
		return nil, err
	}

	return lowerKeys(raw), nil
}

// JSONLowerParser reads and writes JSON configuration files with lower-cased keys.
type JSONLowerParser struct {
	prefix string
	indent string
}

func (p *JSONLowerParser) Unmarshal(data []byte) (map[string]interface{}, error) {
	return unmarshalLower(data, json.Unmarshal)
}

func (p *JSONLowerParser) Marshal(config map[string]interface{}) ([]byte, error) {
	return json.MarshalIndent(config, p.prefix, p.indent)
}

// YAMLLowerParser reads and writes YAML configuration files with lower-cased keys.
type YAMLLowerParser struct{}

func (p *YAMLLowerParser) Unmarshal(data []byte) (map[string]interface{}, error) {
	return unmarshalLower(data, yaml.Unmarshal)
}

func (p *YAMLLowerParser) Marshal(config map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(config)
}
