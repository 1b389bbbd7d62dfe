package version

// Version is overridden at build time with -ldflags "-X ...version.Version=...".
var Version = "dev"

// CompilerVersion is the GCC release the reordering plugin is built against.
const CompilerVersion = "7.3.0"
