package backend

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/nmslite/mkoracle/internal/config"
	"github.com/nmslite/mkoracle/internal/types"
)

var (
	// ErrConfiguration is returned by Build when a mandatory part of the task
	// is missing.
	ErrConfiguration = errors.New("invalid task configuration")

	// ErrBuilderConsumed is returned when Build is called twice on one builder.
	ErrBuilderConsumed = fmt.Errorf("%w: builder already consumed", ErrConfiguration)
)

// Target holds the resolved connection coordinates of a task.
type Target struct {
	Host  types.HostName
	Point types.PointName
	Port  types.Port
	Auth  config.Authentication
}

// EasyConnect renders the target as an Oracle easy connect string,
// host:port/point.
func (t Target) EasyConnect() string {
	return net.JoinHostPort(t.Host.String(), t.Port.String()) + "/" + t.Point.String()
}

// TaskBuilder collects the parts of a Task. Target and backend are
// mandatory, the database name is optional.
type TaskBuilder struct {
	target   *Target
	backend  Backend
	database *string
	consumed bool
}

func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{}
}

// Target copies the connection coordinates and authentication of endpoint.
func (b *TaskBuilder) Target(endpoint config.Endpoint) *TaskBuilder {
	b.target = &Target{
		Host:  endpoint.Hostname(),
		Point: endpoint.Conn().Point(),
		Port:  endpoint.Port(),
		Auth:  endpoint.Auth(),
	}
	return b
}

func (b *TaskBuilder) Backend(backend Backend) *TaskBuilder {
	b.backend = backend
	return b
}

// Database sets the database or service name. Nil clears it.
func (b *TaskBuilder) Database(name *string) *TaskBuilder {
	if name == nil {
		b.database = nil
		return b
	}
	d := *name
	b.database = &d
	return b
}

// Build validates the collected parts and returns the task. The builder
// cannot be reused afterwards.
func (b *TaskBuilder) Build() (*Task, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	if b.target == nil {
		return nil, fmt.Errorf("%w: target is absent", ErrConfiguration)
	}
	if b.backend == nil {
		return nil, fmt.Errorf("%w: backend not defined", ErrConfiguration)
	}

	t := &Task{
		id:      uuid.New(),
		target:  *b.target,
		backend: b.backend,
	}
	if b.database != nil {
		t.database = *b.database
		t.hasDatabase = true
	}

	b.target, b.backend, b.database = nil, nil, nil
	b.consumed = true
	return t, nil
}

// Task is a validated unit of monitoring work. It is immutable and safe for
// concurrent use.
type Task struct {
	id          uuid.UUID
	target      Target
	backend     Backend
	database    string
	hasDatabase bool
}

// Connect attempts a connection through the task's backend. Backends that are
// not implemented fail with ErrUnimplementedBackend without any I/O.
func (t *Task) Connect(ctx context.Context) error {
	return t.backend.connect(ctx, t.target)
}

// ID identifies the task in logs.
func (t *Task) ID() uuid.UUID { return t.id }

// Target returns a copy of the task's target.
func (t *Task) Target() Target { return t.target }

func (t *Task) Backend() Backend { return t.backend }

// Database returns the database name and whether one was set.
func (t *Task) Database() (string, bool) { return t.database, t.hasDatabase }

// MakeTask builds a task for endpoint with the default SqlPlus backend.
func MakeTask(endpoint config.Endpoint) (*Task, error) {
	return NewTaskBuilder().
		Target(endpoint).
		Backend(SqlPlusBackend{}).
		Build()
}

// MakeCustomTask builds a task like MakeTask and monitors it under point
// instead of the endpoint's own connection point.
func MakeCustomTask(endpoint config.Endpoint, point types.PointName) (*Task, error) {
	t, err := MakeTask(endpoint)
	if err != nil {
		return nil, err
	}
	t.target.Point = point
	return t, nil
}
