package shared

// Build metadata, set with -ldflags "-X github.com/l3montree-dev/sbomguard/shared.Version=..."
var (
	Version   = "dev"
	Commit    string
	Branch    string
	BuildDate string
)
