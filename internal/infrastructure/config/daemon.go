package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// Unix socket path for IPC (takes precedence over server.address)
	SocketPath string `mapstructure:"socket_path"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// DaemonAddress returns where the planner daemon listens and where clients dial.
// A configured socket path wins over the TCP server address.
func (c *Config) DaemonAddress() string {
	if c.Daemon.SocketPath != "" {
		return "unix:" + c.Daemon.SocketPath
	}
	return c.Server.Address
}
