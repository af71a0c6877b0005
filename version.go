package gatito

// Version information for gatito.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/gatito.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "gatito"

	// Description is a short description of the application.
	Description = "Structured data, WhatsApp ordering and consent core for the Gatito site"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/gatito"
)

// Build information, set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version with the short commit appended when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent to analytics collectors.
func UserAgent() string {
	return Name + "/" + Version + " (+" + Repository + ")"
}
