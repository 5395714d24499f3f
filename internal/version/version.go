// ABOUTME: Version information for reel
// ABOUTME: Product name and version reported in logs and --version
package version

// Version is overridden at build time with -ldflags "-X .../version.Version=..."
var Version = "0.3.0"

const (
	Product      = "reel"
	Manufacturer = "Resonate"
)
