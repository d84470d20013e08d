package types

import "time"

// HTTPConfig holds shared HTTP settings used by every component that talks
// to a remote service (registry, TAP archives, file downloads).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client-side timeout;
	// whatever the remote service enforces applies.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "tapfetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds the backoff retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RegistryConfig holds settings for VO registry resolution.
type RegistryConfig struct {
	// Endpoint is the RegTAP service queried for archive endpoints.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// MaxRegistries is the maximum number of archives taken from a registry
	// search (default 1).
	MaxRegistries int `json:"max_registries" yaml:"max_registries"`
}

// OutputConfig holds settings for URL lists and downloaded payloads.
type OutputConfig struct {
	// DownloadDir is where downloaded files land, relative to the working
	// directory unless absolute (default "fits").
	DownloadDir string `json:"download_dir" yaml:"download_dir"`

	// DownloadDelay is the pause between consecutive downloads (default 0).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// LedgerConfig holds settings for the run history database.
type LedgerConfig struct {
	// Path is the SQLite file recording runs. Empty disables the ledger.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Config groups all settings for a tapfetch run.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
}
