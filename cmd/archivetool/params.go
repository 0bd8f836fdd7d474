package main

import (
	flag "github.com/spf13/pflag"

	"github.com/roboware/serialkit/app/configuration"
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/serializer/extstore"
)

// envPrefix is the prefix of the environment variables, e.g. ARCHIVETOOL_STORE_BACKEND.
const envPrefix = "ARCHIVETOOL"

const (
	commandDump   = "dump"
	commandSpill  = "spill"
	commandVerify = "verify"
)

var errUsage = ierrors.New("usage: archivetool [flags] <dump|spill|verify> <archive>")

// Params holds the settings of the tool.
type Params struct {
	Store  extstore.Config
	Logger logger.Config
}

func defaultParams() *Params {
	loggerCfg := logger.DefaultCfg
	loggerCfg.Level = "warn"
	loggerCfg.OutputPaths = []string{"stderr"}

	return &Params{
		Store:  extstore.DefaultConfig,
		Logger: loggerCfg,
	}
}

type command struct {
	name    string
	archive string
	out     string
	params  *Params
}

// parseCommandLine merges the config file, the environment and the flags into the params.
// Flags win over environment variables, which win over the config file.
func parseCommandLine(args []string) (*command, error) {
	params := defaultParams()
	config := configuration.New()

	flagSet := configuration.NewUnsortedFlagSet("archivetool", flag.ContinueOnError)
	configFile := flagSet.StringP("config", "c", "", "file path of the JSON or YAML configuration file")
	out := flagSet.String("out", "", "file path of the rewritten archive (spill only, defaults to the input)")
	config.BindParameters(flagSet, "store", &params.Store)
	config.BindParameters(flagSet, "logger", &params.Logger)

	if err := flagSet.Parse(args); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse flags")
	}

	if *configFile != "" {
		if err := config.LoadFile(*configFile); err != nil {
			return nil, ierrors.Wrap(err, "failed to load config file")
		}
	}

	// defaults have to exist before env vars are accepted
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, err
	}
	if err := config.LoadEnvironmentVars(envPrefix); err != nil {
		return nil, err
	}
	// explicit flags overwrite env vars
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, err
	}

	if err := config.UpdateBoundParameters(); err != nil {
		return nil, err
	}

	if flagSet.NArg() != 2 {
		return nil, errUsage
	}

	cmd := &command{
		name:    flagSet.Arg(0),
		archive: flagSet.Arg(1),
		out:     *out,
		params:  params,
	}

	switch cmd.name {
	case commandDump, commandVerify:
		if configuration.HasFlag(flagSet, "out") {
			return nil, ierrors.Errorf("--out is only supported by %s", commandSpill)
		}
	case commandSpill:
		if cmd.out == "" {
			cmd.out = cmd.archive
		}
	default:
		return nil, ierrors.Wrapf(errUsage, "unknown command %q", cmd.name)
	}

	return cmd, nil
}
