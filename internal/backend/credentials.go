package backend

import (
	"log/slog"

	"github.com/nmslite/mkoracle/internal/config"
)

// Credentials for authentication. They are derived right before a
// connection is opened and never stored on a Task.
type Credentials struct {
	User     string `json:"user"`
	Password string `json:"-"`
}

// LogValue keeps the password out of log output.
func (c Credentials) LogValue() slog.Value {
	password := ""
	if c.Password != "" {
		password = "******"
	}
	return slog.GroupValue(
		slog.String("user", c.User),
		slog.String("password", password),
	)
}

// ObtainConfigCredentials returns the credentials configured for auth.
// Os authentication uses the ambient operating system identity and yields
// none.
func ObtainConfigCredentials(auth config.Authentication) (Credentials, bool) {
	switch auth.Type() {
	case config.AuthTypeStandard, config.AuthTypeKerberos:
		password, _ := auth.Password()
		return Credentials{User: auth.Username(), Password: password}, true
	case config.AuthTypeOs:
		return Credentials{}, false
	}
	return Credentials{}, false
}
