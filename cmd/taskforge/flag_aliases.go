package main

import (
	"strings"

	"github.com/spf13/pflag"
)

var flagAliases = map[string]string{
	"log": "log-file",
}

// normalizeFlagName maps aliases and accepts underscores in place of dashes.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}
