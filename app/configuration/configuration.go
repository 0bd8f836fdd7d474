// Package configuration merges settings from config files, environment variables and command line flags.
package configuration

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	flag "github.com/spf13/pflag"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/runtime/ioutils"
)

var (
	// ErrConfigDoesNotExist is returned if the config file is unknown.
	ErrConfigDoesNotExist = ierrors.New("config does not exist")
	// ErrUnknownConfigFormat is returned if the format of the config file is unknown.
	ErrUnknownConfigFormat = ierrors.New("unknown config file format")
)

// Configuration holds config parameters from several sources (file, env vars, flags).
// All keys are case-insensitive.
type Configuration struct {
	config *koanf.Koanf
	// boundParameters keeps track of all parameters that were bound using BindParameters.
	boundParameters map[string]*BoundParameter
}

// New returns a new configuration.
func New() *Configuration {
	return &Configuration{
		config:          koanf.New("."),
		boundParameters: make(map[string]*BoundParameter),
	}
}

func parserFor(filePath string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return &JSONLowerParser{indent: "  "}, nil
	case ".yaml", ".yml":
		return &YAMLLowerParser{}, nil
	default:
		return nil, ierrors.Wrapf(ErrUnknownConfigFormat, "file %s", filePath)
	}
}

// LoadFile loads parameters from a JSON or YAML file and merges them into the loaded config.
// Existing keys will be overwritten.
func (c *Configuration) LoadFile(filePath string) error {
	exists, isDir, err := ioutils.PathExists(filePath)
	if err != nil {
		return err
	}
	if !exists {
		return ierrors.Wrapf(ErrConfigDoesNotExist, "file %s", filePath)
	}
	if isDir {
		return ierrors.Errorf("given path is a directory instead of a file %s", filePath)
	}

	parser, err := parserFor(filePath)
	if err != nil {
		return err
	}

	return c.config.Load(file.Provider(filePath), parser)
}

// StoreFile stores the current config to a JSON or YAML file.
func (c *Configuration) StoreFile(filePath string, perm os.FileMode) error {
	parser, err := parserFor(filePath)
	if err != nil {
		return err
	}

	data, err := parser.Marshal(c.config.Raw())
	if err != nil {
		return ierrors.Wrap(err, "unable to marshal config file")
	}

	if err := os.WriteFile(filePath, data, perm); err != nil {
		return ierrors.Wrap(err, "unable to save config file")
	}

	return nil
}

// LoadFlagSet loads parameters from a FlagSet including default values and merges them into the loaded config.
// Existing keys will only be overwritten, if they were set via command line.
// If not given via command line, default values will only be used if they did not exist beforehand.
func (c *Configuration) LoadFlagSet(flagSet *flag.FlagSet) error {
	return c.config.Load(newFlagProvider(flagSet, ".", c.config), nil)
}

// LoadEnvironmentVars loads parameters from env vars and merges them into the loaded config.
// The prefix is used to filter the env vars, an underscore separates nested keys.
// Only existing keys will be overwritten, all other keys are ignored.
func (c *Configuration) LoadEnvironmentVars(prefix string) error {
	if prefix != "" {
		prefix += "_"
	}

	return c.config.Load(env.Provider(prefix, ".", func(s string) string {
		mapKey := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", ".")
		if !c.config.Exists(mapKey) {
			// only accept values from env vars that already exist in the config
			return ""
		}

		return mapKey
	}), nil)
}

// Koanf returns the underlying Koanf instance.
func (c *Configuration) Koanf() *koanf.Koanf {
	return c.config
}

// Load merges the config map of a koanf provider, parsed by pa if the provider returns raw bytes.
func (c *Configuration) Load(p koanf.Provider, pa koanf.Parser, opts ...koanf.Option) error {
	return c.config.Load(p, pa, opts...)
}

// UnmarshalKey decodes the value at path into out, using the koanf tags of struct fields.
func (c *Configuration) UnmarshalKey(path string, out any) error {
	if err := c.config.UnmarshalWithConf(strings.ToLower(path), out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return ierrors.Wrapf(err, "failed to unmarshal %s", path)
	}

	return nil
}

// Exists reports whether path holds a value.
func (c *Configuration) Exists(path string) bool {
	return c.config.Exists(strings.ToLower(path))
}

// Get returns the raw value at path.
func (c *Configuration) Get(path string) any {
	return c.config.Get(strings.ToLower(path))
}

func (c *Configuration) String(path string) string {
	return c.config.String(strings.ToLower(path))
}

func (c *Configuration) Strings(path string) []string {
	return c.config.Strings(strings.ToLower(path))
}

func (c *Configuration) Int(path string) int {
	return c.config.Int(strings.ToLower(path))
}

func (c *Configuration) Bool(path string) bool {
	return c.config.Bool(strings.ToLower(path))
}

// All returns the flattened config map.
func (c *Configuration) All() map[string]any {
	return c.config.All()
}
