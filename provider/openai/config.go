package openai

const (
	defaultModel          = "gpt-4o-mini"
	defaultTimeoutSeconds = 60
	defaultMaxRetries     = 3
)

// Config holds OpenAI binding parameters. The API key normally comes from
// the OPENAI_API_KEY environment variable; APIKey overrides it, and BaseURL
// points the binding at a compatible local endpoint.
type Config struct {
	Model          string `json:"model,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	MaxRetries     int    `json:"max_retries,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:          defaultModel,
		TimeoutSeconds: defaultTimeoutSeconds,
		MaxRetries:     defaultMaxRetries,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
}
