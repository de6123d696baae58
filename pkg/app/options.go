package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// CliOptions abstracts configuration options for reading parameters from the
// command line.
type CliOptions interface {
	// Flags returns the option flags grouped by section.
	Flags() cliflag.NamedFlagSets

	// Validate checks the completed options.
	Validate() error
}

// NamedFlagSetOptions are options that can be completed after flags and the
// config file have been applied.
type NamedFlagSetOptions interface {
	CliOptions

	// Complete fills in derived fields.
	Complete() error
}
