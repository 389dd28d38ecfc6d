package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// credentialURL matches a connection string with a password, such as
	// postgres://quotes:secret@db:5432/quotes.
	credentialURL = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://[^:/@\s]*:[^@\s]+@`)

	// authHeader matches Authorization header values.
	authHeader = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
)

// RedactOptions lists what the service masks in every log line. Database
// credentials are the main concern: DATABASE_URL is logged at startup and
// pgx errors can echo the DSN.
func RedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("database_url"),
		masq.WithFieldName("dsn"),
		masq.WithFieldName("password"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(credentialURL),
		masq.WithRegex(authHeader),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr that applies RedactOptions
// plus any extra options.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(), extra...)...)
}
