package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-attempt HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cite-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the lookup cache.
type CacheConfig struct {
	// Dir is the directory holding the cache database.
	Dir string `json:"dir" yaml:"dir"`

	// TTL is the age beyond which a cached payload is treated as a miss
	// by freshness-enforcing callers (default 30 days).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// LookupConfig holds settings for the external lookup client.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// MinInterval is the minimum interval between outgoing requests,
	// enforced process-wide across all workers (default 1s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// MaxRetries is the retry ceiling for transient failures (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Mailto is sent to CrossRef for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// DataCiteToken is an optional bearer token for the DataCite API.
	DataCiteToken string `json:"datacite_token,omitempty" yaml:"datacite_token,omitempty"`
}

// ResolverConfig holds the fuzzy-matching policy knobs. The threshold and
// weights are tunable parameters, not fixed constants.
type ResolverConfig struct {
	// FuzzyThreshold is the minimum combined score for a fuzzy match to be
	// accepted (default 0.75).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`

	// AmbiguityMargin is the score distance below which two above-threshold
	// candidates are treated as ambiguous (default 0.05).
	AmbiguityMargin float64 `json:"ambiguity_margin" yaml:"ambiguity_margin"`

	// TitleWeight and AuthorWeight combine title similarity and author
	// surname overlap into the fuzzy score (defaults 0.7 and 0.3). When an
	// occurrence carries no author information the title similarity is used
	// alone.
	TitleWeight  float64 `json:"title_weight" yaml:"title_weight"`
	AuthorWeight float64 `json:"author_weight" yaml:"author_weight"`
}

// Defaulted returns a copy with zero fields replaced by defaults.
func (c ResolverConfig) Defaulted() ResolverConfig {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = 0.75
	}
	if c.AmbiguityMargin <= 0 {
		c.AmbiguityMargin = 0.05
	}
	if c.TitleWeight <= 0 {
		c.TitleWeight = 0.7
	}
	if c.AuthorWeight <= 0 {
		c.AuthorWeight = 0.3
	}
	return c
}

// PipelineConfig groups the stage configurations for one resolution run.
type PipelineConfig struct {
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Lookup   LookupConfig   `json:"lookup" yaml:"lookup"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`

	// Workers bounds the resolution worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// Offline disables external lookups; occurrences resolve from the
	// library snapshot alone.
	Offline bool `json:"offline" yaml:"offline"`

	// Strict converts a nonzero failure count into a run-level error after
	// the failure report has been produced.
	Strict bool `json:"strict" yaml:"strict"`
}
