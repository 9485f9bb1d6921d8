package server

const (
	defaultAddr                     = ":8080"
	defaultReadHeaderTimeoutSeconds = 10
)

// Config holds HTTP server parameters. WriteTimeout is deliberately absent:
// turn streams stay open for as long as generation takes.
type Config struct {
	Addr                     string `json:"addr,omitempty"`
	ReadHeaderTimeoutSeconds int    `json:"read_header_timeout_seconds,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:                     defaultAddr,
		ReadHeaderTimeoutSeconds: defaultReadHeaderTimeoutSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.ReadHeaderTimeoutSeconds > 0 {
		c.ReadHeaderTimeoutSeconds = source.ReadHeaderTimeoutSeconds
	}
}
