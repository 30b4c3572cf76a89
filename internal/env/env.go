package env

import (
	"os"
	"path/filepath"
)

// ServerMode is set when the process runs the long-lived dashboard (`serve`).
var ServerMode bool = false

// (default: %USERPROFILE%/.tunnel-dashboard on Windows, $HOME/.tunnel-dashboard on Linux)
var DashboardDir string = GetDashboardDir()

/**
 * Get dashboard home directory path
 * @returns {string} Returns dashboard directory path
 */
func GetDashboardDir() string {
	if dir := os.Getenv("TUNNELDASH_HOME"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tunnel-dashboard")
}

// Version of the dashboard, set from build flags in main
var Version string = "dev"
