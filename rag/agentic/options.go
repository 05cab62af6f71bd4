package agentic

// Config controls the orchestration loop. It groups the loop budgets and the
// system prompts of the three model-facing stages so callers can construct
// reproducible pipelines from a single struct.
type Config struct {
	Name          string  // Logical name for tracing/logging
	FanOut        int     // Passages requested per retrieval call (k)
	MaxIterations int     // Hard ceiling on generate/reflect passes
	Verbose       bool    // Surface progress at info level instead of debug
	Temperature   float64 // Sampling temperature for all model calls

	PlannerPrompt    string // System prompt for the query planner
	SynthesisPrompt  string // System prompt for the answer synthesizer
	ReflectionPrompt string // System prompt for the completeness reflector
}

// Option customises the orchestrator configuration.
type Option func(*Config)

// WithName sets the logical pipeline name used in logs and spans.
func WithName(name string) Option {
	return func(cfg *Config) {
		if name != "" {
			cfg.Name = name
		}
	}
}

// WithFanOut sets how many passages each retrieval call requests. The merged
// context is capped at twice this value.
func WithFanOut(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.FanOut = k
		}
	}
}

// WithMaxIterations caps the number of generate/reflect passes. A value of 1
// degenerates to a single plan/retrieve/generate pass without reflection.
func WithMaxIterations(max int) Option {
	return func(cfg *Config) {
		if max > 0 {
			cfg.MaxIterations = max
		}
	}
}

// WithVerbose surfaces intermediate progress at info level. It never changes
// retrieval, generation, or termination decisions.
func WithVerbose(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Verbose = enabled
	}
}

// WithTemperature sets the sampling temperature for every model call.
func WithTemperature(temp float64) Option {
	return func(cfg *Config) {
		if temp >= 0 {
			cfg.Temperature = temp
		}
	}
}

// WithPlannerPrompt sets the system prompt used for query planning.
func WithPlannerPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.PlannerPrompt = prompt
		}
	}
}

// WithSynthesisPrompt sets the system prompt used for answer synthesis.
func WithSynthesisPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.SynthesisPrompt = prompt
		}
	}
}

// WithReflectionPrompt sets the system prompt used for completeness checks.
func WithReflectionPrompt(prompt string) Option {
	return func(cfg *Config) {
		if prompt != "" {
			cfg.ReflectionPrompt = prompt
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		Name:             "docqa",
		FanOut:           5,
		MaxIterations:    3,
		Temperature:      0.1,
		PlannerPrompt:    "You are a query planning assistant. Always respond with valid JSON only.",
		SynthesisPrompt:  "You are a helpful assistant that answers questions based on provided documents. Be thorough and accurate.",
		ReflectionPrompt: "You are a quality assessment assistant. Always respond with valid JSON only.",
	}
}

func applyOptions(cfg *Config, opts []Option) *Config {
	if cfg == nil {
		cfg = defaultConfig()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}
