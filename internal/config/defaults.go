package config

const (
	DefaultListenAddr = ":8080"
	DefaultAdminAddr  = "127.0.0.1:9090"
)

// DefaultLogDir returns the default audit log directory path.
func DefaultLogDir() string {
	return "~/.headergate/logs"
}
