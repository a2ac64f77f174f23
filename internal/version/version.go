package version

// Version is overridden at release time via -ldflags.
var Version = "dev"

// String returns the version for CLI display.
func String() string { return Version }
