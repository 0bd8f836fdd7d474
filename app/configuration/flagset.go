package configuration

import (
	flag "github.com/spf13/pflag"
)

// NewUnsortedFlagSet creates a FlagSet that prints its flags in definition order,
// so the parameters of one bound struct stay together in the usage text.
func NewUnsortedFlagSet(name string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	flagSet := flag.NewFlagSet(name, errorHandling)
	flagSet.SortFlags = false

	return flagSet
}

// HasFlag reports whether the flag was given on the command line.
func HasFlag(flagSet *flag.FlagSet, name string) bool {
	f := flagSet.Lookup(name)

	return f != nil && f.Changed
}
