package app

// Build information set with -ldflags "-X .../internal/app.BuildVersion=...".
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Version describes the running binary for logs and -version output.
func Version() string {
	return BuildVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
