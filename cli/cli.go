package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/i-c-grant/ni-meister-gedi-biomass/cli.Version=1.2.3' -X 'github.com/i-c-grant/ni-meister-gedi-biomass/cli.Date=2026-02-09'"
var (
	Version string
	Date    string
)
