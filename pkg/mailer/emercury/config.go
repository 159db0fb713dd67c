package emercury

import "log/slog"

// DefaultHost is the Emercury API host used when Config.Host is empty.
const DefaultHost = "api.smtp.emercury.net"

const redacted = "[REDACTED]"

// Config holds Emercury API configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey APIKey `env:"EMERCURY_API_KEY"`
	Host   string `env:"EMERCURY_HOST"`
	Port   int    `env:"EMERCURY_PORT"`
}

// APIKey is the Emercury API token. Every printable form of it is redacted;
// only the request builder reads the raw value.
type APIKey string

func (k APIKey) String() string   { return redacted }
func (k APIKey) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (k APIKey) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText implements encoding.TextMarshaler.
func (k APIKey) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// MarshalJSON implements json.Marshaler.
func (k APIKey) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }
