// Package backend builds connection tasks for monitored Oracle endpoints and
// dispatches their connection attempts to the selected backend.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnimplementedBackend is returned by Connect for backends that have
	// no connectivity yet. It never indicates a network or auth failure.
	ErrUnimplementedBackend = errors.New("backend is not implemented yet")

	// ErrUnknownBackend is returned when a backend name cannot be resolved.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Kind names a backend variant.
type Kind string

const (
	// KindStd is the native client backend.
	KindStd Kind = "std"

	// KindSqlPlus drives the sqlplus command line client.
	KindSqlPlus Kind = "sqlplus"

	// KindJdbc goes through a JDBC bridge.
	KindJdbc Kind = "jdbc"
)

func (k Kind) String() string { return string(k) }

// Backend is the connectivity implementation a task uses to reach its
// target. The set of backends is closed: only this package can add one,
// and each must provide its own connect.
type Backend interface {
	Kind() Kind
	connect(ctx context.Context, target Target) error
}

// StdBackend is the only backend wired to connectivity.
type StdBackend struct{}

func (StdBackend) Kind() Kind { return KindStd }

// connect succeeds unconditionally; session establishment is not wired yet.
// TODO: open a real session against target.EasyConnect() and honour ctx.
func (StdBackend) connect(context.Context, Target) error { return nil }

type SqlPlusBackend struct{}

func (SqlPlusBackend) Kind() Kind { return KindSqlPlus }

func (SqlPlusBackend) connect(context.Context, Target) error {
	return fmt.Errorf("%w: %s", ErrUnimplementedBackend, KindSqlPlus)
}

type JdbcBackend struct{}

func (JdbcBackend) Kind() Kind { return KindJdbc }

func (JdbcBackend) connect(context.Context, Target) error {
	return fmt.Errorf("%w: %s", ErrUnimplementedBackend, KindJdbc)
}

// Descriptor describes a backend for listings.
type Descriptor struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Implemented bool   `json:"implemented"`
}

var descriptors = []Descriptor{
	{
		Kind:        KindStd,
		Name:        "Native client",
		Description: "Connects through the native Oracle client libraries",
		Implemented: true,
	},
	{
		Kind:        KindSqlPlus,
		Name:        "SQL*Plus",
		Description: "Runs queries through the sqlplus command line client",
	},
	{
		Kind:        KindJdbc,
		Name:        "JDBC",
		Description: "Runs queries through a JDBC bridge",
	},
}

// Kinds returns the descriptors of all known backends.
func Kinds() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// ParseKind resolves a backend name, ignoring case and surrounding spaces.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case KindStd, KindSqlPlus, KindJdbc:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// New returns the backend for a name accepted by ParseKind.
func New(name string) (Backend, error) {
	k, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindStd:
		return StdBackend{}, nil
	case KindSqlPlus:
		return SqlPlusBackend{}, nil
	case KindJdbc:
		return JdbcBackend{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
