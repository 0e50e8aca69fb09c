package stub

// Definition is the wire form of a stub, shared by YAML definition files and
// the admin registration API. Field names are identical in both encodings.
type Definition struct {
	ID       string             `yaml:"id,omitempty" json:"id,omitempty"`
	Method   string             `yaml:"method" json:"method"`
	Path     string             `yaml:"path" json:"path"`
	Query    map[string]any     `yaml:"query,omitempty" json:"query,omitempty"`
	Body     any                `yaml:"body,omitempty" json:"body,omitempty"`
	Response ResponseDefinition `yaml:"response" json:"response"`
	Policy   *PolicyDefinition  `yaml:"policy,omitempty" json:"policy,omitempty"`
}

// ResponseDefinition is the wire form of a stub's canned response.
type ResponseDefinition struct {
	Status  int               `yaml:"status" json:"status"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    any               `yaml:"body,omitempty" json:"body,omitempty"`
	Engine  string            `yaml:"engine,omitempty" json:"engine,omitempty"`
}

// PolicyDefinition is the wire form of per-stub policies.
type PolicyDefinition struct {
	RateLimit *RateLimitDefinition `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
	Latency   *LatencyDefinition   `yaml:"latency,omitempty" json:"latency,omitempty"`
}

// RateLimitDefinition is the wire form of a rate limit policy.
type RateLimitDefinition struct {
	Rate  float64 `yaml:"rate" json:"rate"`
	Burst int     `yaml:"burst" json:"burst"`
	Key   string  `yaml:"key,omitempty" json:"key,omitempty"`
}

// LatencyDefinition is the wire form of a latency policy.
type LatencyDefinition struct {
	FixedMs  int `yaml:"fixed_ms,omitempty" json:"fixed_ms,omitempty"`
	JitterMs int `yaml:"jitter_ms,omitempty" json:"jitter_ms,omitempty"`
}
