package config

// RedactedConfig returns a copy of cfg with credentials replaced by "***",
// suitable for logging the active configuration.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Redis.Password)

	redact(&out.ERP.DSN)
	redact(&out.ERP.Password)

	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
