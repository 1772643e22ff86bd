package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.wpp-mcp, or $WPPMCP_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("WPPMCP_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wpp-mcp")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// SocketPath returns the daemon's gRPC Unix socket path.
func SocketPath() string {
	return filepath.Join(BaseDir(), "wppd.sock")
}

// LockPath returns the daemon's single-instance lock file.
func LockPath() string {
	return filepath.Join(BaseDir(), "LOCK")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the log file for the named binary.
func LogPath(binary string) string {
	return filepath.Join(LogDir(), binary+".log")
}

// EnsureDir creates the directory tree with owner-only permissions.
func EnsureDir() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
