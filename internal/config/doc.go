// Package config loads and validates the application configuration.
//
// Configuration is layered: environment variables with the MNAV prefix take
// precedence over the optional config.yaml next to the executable, which in
// turn overrides the struct defaults. Relative paths are resolved against the
// executable directory so the binary can run from any working directory.
package config
