// Package config holds the runtime settings for the migration tool and the
// static Racktables reference tables (object types, manufacturer prefixes,
// interface-name substitutions) the stages consult.
//
// Settings load from an optional YAML file via viper, with environment
// overrides under the RT2NB_ prefix and struct defaults applied through
// creasty/defaults. Command-line flags (site filter, basic/extended
// selection) are bound on top by cmd/migrate.
package config
