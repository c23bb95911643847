package cli

var (
	verbose bool

	// all commands
	configPath string
	mode       string
	serial     string
	scale      float64

	// for devices command
	onlineOnly bool
)
