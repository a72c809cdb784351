package version

// Version is the current version of ribir-bot.
// Bump this on every release.
const Version = "0.5.0"

// FullVersion returns the version with the v prefix.
func FullVersion() string {
	return "v" + Version
}
