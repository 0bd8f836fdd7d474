package configuration

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
)

// Set stores value under the dotted, case-insensitive key path.
// An optional parser decodes value first, e.g. for raw bytes.
func (c *Configuration) Set(path string, value interface{}, parser ...koanf.Parser) error {
	var p koanf.Parser
	if len(parser) > 0 {
		p = parser[0]
	}

	return c.config.Load(confmap.Provider(map[string]interface{}{
		strings.ToLower(path): value,
	}, "."), p)
}

// SetDefault stores value under path unless a file, an environment variable or a flag set it already.
func (c *Configuration) SetDefault(path string, value interface{}, parser ...koanf.Parser) error {
	if c.Exists(path) {
		return nil
	}

	return c.Set(path, value, parser...)
}
