package config

import (
	"strings"
	"time"

	"github.com/nmslite/mkoracle/internal/types"
)

// AuthType selects how the monitoring user authenticates against the database.
type AuthType string

const (
	// AuthTypeStandard is a database user with a password.
	AuthTypeStandard AuthType = "standard"

	// AuthTypeKerberos authenticates through a Kerberos principal.
	AuthTypeKerberos AuthType = "kerberos"

	// AuthTypeOs relies on the credentials of the operating system user.
	AuthTypeOs AuthType = "os"
)

func (t AuthType) String() string { return string(t) }

// normalize maps the tag to one of the known types. Unknown and empty tags
// become AuthTypeStandard.
func (t AuthType) normalize() AuthType {
	switch AuthType(strings.ToLower(strings.TrimSpace(string(t)))) {
	case AuthTypeKerberos:
		return AuthTypeKerberos
	case AuthTypeOs:
		return AuthTypeOs
	default:
		return AuthTypeStandard
	}
}

// Authentication is the chosen auth mode plus the credential material.
type Authentication struct {
	authType    AuthType
	username    string
	password    string
	hasPassword bool
}

// NewAuthentication creates an Authentication. A nil password means the
// password is not set.
func NewAuthentication(authType AuthType, username string, password *string) Authentication {
	a := Authentication{authType: authType.normalize(), username: username}
	if password != nil {
		a.password = *password
		a.hasPassword = true
	}
	return a
}

// Type returns the auth mode. The zero Authentication is AuthTypeStandard.
func (a Authentication) Type() AuthType { return a.authType.normalize() }

func (a Authentication) Username() string { return a.username }

// Password returns the password and whether one was configured.
func (a Authentication) Password() (string, bool) { return a.password, a.hasPassword }

// Connection holds the per-endpoint connection options.
type Connection struct {
	point       types.PointName
	timeout     time.Duration
	backend     string
	database    string
	hasDatabase bool
}

func NewConnection(point types.PointName, timeout time.Duration) Connection {
	return Connection{point: point, timeout: timeout}
}

// WithPoint returns a copy monitored under point.
func (c Connection) WithPoint(point types.PointName) Connection {
	c.point = point
	return c
}

// WithBackend returns a copy naming the preferred backend.
func (c Connection) WithBackend(name string) Connection {
	c.backend = name
	return c
}

// WithDatabase returns a copy naming the database or service.
func (c Connection) WithDatabase(name string) Connection {
	c.database = name
	c.hasDatabase = true
	return c
}

func (c Connection) Point() types.PointName { return c.point }

func (c Connection) Timeout() time.Duration { return c.timeout }

// Backend returns the configured backend name, empty when none was chosen.
func (c Connection) Backend() string { return c.backend }

func (c Connection) Database() (string, bool) { return c.database, c.hasDatabase }

// Endpoint is one configured database to monitor.
type Endpoint struct {
	hostname types.HostName
	port     types.Port
	conn     Connection
	auth     Authentication
}

func NewEndpoint(hostname types.HostName, port types.Port, conn Connection, auth Authentication) Endpoint {
	return Endpoint{hostname: hostname, port: port, conn: conn, auth: auth}
}

func (e Endpoint) Hostname() types.HostName { return e.hostname }

func (e Endpoint) Port() types.Port { return e.port }

func (e Endpoint) Conn() Connection { return e.conn }

func (e Endpoint) Auth() Authentication { return e.auth }
