package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.ResultsPath == "" {
		cfg.Storage.ResultsPath = "/usr/local/var/shinsa/data/results.db"
	}
	if cfg.Mutation.LookaheadChars == 0 {
		cfg.Mutation.LookaheadChars = 300
	}
	if cfg.Mutation.InsertionDepth == 0 {
		cfg.Mutation.InsertionDepth = 0.70
	}
	if cfg.Mutation.MinResultLen == 0 {
		cfg.Mutation.MinResultLen = 50
	}
	if cfg.Dataset.SampleRatio == 0 {
		cfg.Dataset.SampleRatio = 1.0
	}
	if cfg.Dataset.Seed == 0 {
		cfg.Dataset.Seed = 12345
	}
	if cfg.Dataset.MaxRetries == 0 {
		cfg.Dataset.MaxRetries = 100
	}
	if cfg.Dataset.MinTextLen == 0 {
		cfg.Dataset.MinTextLen = 500
	}
	if cfg.Dataset.Variants == nil {
		cfg.Dataset.Variants = []string{
			"original",
			"no_abstract",
			"no_introduction",
			"no_conclusion",
			"no_experiments",
			"no_methods",
		}
	}
	if cfg.Review.Model == "" {
		cfg.Review.Model = "cycle-reviewer-8b"
	}
	if cfg.Review.APIKeyEnv == "" {
		cfg.Review.APIKeyEnv = "SHINSA_API_KEY"
	}
	if cfg.Review.Workers == 0 {
		cfg.Review.Workers = 4
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
