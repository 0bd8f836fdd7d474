package configuration

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/pflag"

	"github.com/roboware/serialkit/ierrors"
)

var errFlagProviderUnsupported = ierrors.New("flag provider only supports Read")

// flagProvider feeds the flags of a FlagSet into koanf under lower-cased keys.
//
// A flag set on the command line always overrides. A flag left at its default only fills keys
// that no earlier source (file, environment) provided.
type flagProvider struct {
	flagSet *pflag.FlagSet
	delim   string
	loaded  *koanf.Koanf
}

func newFlagProvider(flagSet *pflag.FlagSet, delim string, loaded *koanf.Koanf) *flagProvider {
	return &flagProvider{
		flagSet: flagSet,
		delim:   delim,
		loaded:  loaded,
	}
}

func (p *flagProvider) Read() (map[string]interface{}, error) {
	flat := make(map[string]interface{})
	p.flagSet.VisitAll(func(f *pflag.Flag) {
		key := strings.ToLower(f.Name)
		if !f.Changed && p.loaded.Exists(key) {
			return
		}

		flat[key] = posflag.FlagVal(p.flagSet, f)
	})

	return maps.Unflatten(flat, p.delim), nil
}

func (p *flagProvider) ReadBytes() ([]byte, error) {
	return nil, errFlagProviderUnsupported
}

//nolint:revive
func (p *flagProvider) Watch(cb func(event interface{}, err error)) error {
	return errFlagProviderUnsupported
}
