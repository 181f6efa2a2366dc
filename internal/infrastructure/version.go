package infrastructure

// version is overridable at build time via -ldflags "-X ...".
var version = "0.3.0"

// Version returns the application version string.
func Version() string {
	return version
}
