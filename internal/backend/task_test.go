package backend

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmslite/mkoracle/internal/config"
	"github.com/nmslite/mkoracle/internal/types"
)

func strPtr(s string) *string { return &s }

func makeEndpoint(authType config.AuthType, port types.Port) config.Endpoint {
	return config.NewEndpoint(
		"localhost",
		port,
		config.NewConnection("XE", time.Second),
		config.NewAuthentication(authType, "bad_user", strPtr("bad_password")),
	)
}

func TestMakeTaskMirrorsEndpoint(t *testing.T) {
	for _, authType := range []config.AuthType{config.AuthTypeStandard, config.AuthTypeKerberos, config.AuthTypeOs} {
		t.Run(authType.String(), func(t *testing.T) {
			ep := makeEndpoint(authType, 65345)

			task, err := MakeTask(ep)
			require.NoError(t, err)

			target := task.Target()
			assert.Equal(t, ep.Hostname(), target.Host)
			assert.Equal(t, ep.Conn().Point(), target.Point)
			assert.Equal(t, ep.Port(), target.Port)
			assert.Equal(t, ep.Auth(), target.Auth)
			assert.Equal(t, KindSqlPlus, task.Backend().Kind())

			_, hasDatabase := task.Database()
			assert.False(t, hasDatabase)
		})
	}
}

func TestMakeTaskFromConfig(t *testing.T) {
	for _, tag := range []string{"standard", "kerberos", "os", "bad"} {
		t.Run(tag, func(t *testing.T) {
			cfg, err := config.FromString(`
oracle:
  main:
    authentication:
      username: "bad_user"
      password: "bad_password"
      type: ` + tag + `
    connection:
      hostname: "localhost"
      port: 65345
      instance: XE
      timeout: 1
`)
			require.NoError(t, err)

			_, err = MakeTask(cfg.Endpoint())
			assert.NoError(t, err)
		})
	}
}

func TestBuildValidation(t *testing.T) {
	ep := makeEndpoint(config.AuthTypeStandard, 1521)

	tests := []struct {
		name     string
		builder  *TaskBuilder
		errorMsg string
	}{
		{"Empty builder", NewTaskBuilder(), "target is absent"},
		{"Backend only", NewTaskBuilder().Backend(StdBackend{}), "target is absent"},
		{"Target only", NewTaskBuilder().Target(ep), "backend not defined"},
		{"Database only", NewTaskBuilder().Database(strPtr("PDB1")), "target is absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.builder.Build()
			assert.Nil(t, task)
			require.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestBuildWithDatabase(t *testing.T) {
	name := "PDB1"
	task, err := NewTaskBuilder().
		Target(makeEndpoint(config.AuthTypeStandard, 1521)).
		Backend(JdbcBackend{}).
		Database(&name).
		Build()
	require.NoError(t, err)

	name = "changed"
	db, ok := task.Database()
	assert.True(t, ok)
	assert.Equal(t, "PDB1", db)
	assert.Equal(t, KindJdbc, task.Backend().Kind())
	assert.NotEqual(t, uuid.Nil, task.ID())
}

func TestBuildDatabaseCleared(t *testing.T) {
	task, err := NewTaskBuilder().
		Target(makeEndpoint(config.AuthTypeStandard, 1521)).
		Backend(StdBackend{}).
		Database(strPtr("PDB1")).
		Database(nil).
		Build()
	require.NoError(t, err)

	_, ok := task.Database()
	assert.False(t, ok)
}

func TestBuilderConsumed(t *testing.T) {
	b := NewTaskBuilder().Target(makeEndpoint(config.AuthTypeStandard, 1521)).Backend(StdBackend{})

	_, err := b.Build()
	require.NoError(t, err)

	task, err := b.Build()
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrBuilderConsumed)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestConnectDispatch(t *testing.T) {
	ep := makeEndpoint(config.AuthTypeStandard, 65345)

	tests := []struct {
		name          string
		backend       Backend
		unimplemented bool
	}{
		{"Std", StdBackend{}, false},
		{"SqlPlus", SqlPlusBackend{}, true},
		{"Jdbc", JdbcBackend{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTaskBuilder().Target(ep).Backend(tt.backend).Build()
			require.NoError(t, err)

			err = task.Connect(context.Background())
			if !tt.unimplemented {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrUnimplementedBackend)
			assert.Contains(t, err.Error(), tt.backend.Kind().String())
		})
	}
}

func TestUnimplementedBackendsDoNotDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := types.Port(ln.Addr().(*net.TCPAddr).Port)
	ep := config.NewEndpoint(
		"127.0.0.1",
		port,
		config.NewConnection("XE", time.Second),
		config.NewAuthentication(config.AuthTypeStandard, "bad_user", strPtr("bad_password")),
	)

	for _, b := range []Backend{SqlPlusBackend{}, JdbcBackend{}} {
		task, err := NewTaskBuilder().Target(ep).Backend(b).Build()
		require.NoError(t, err)
		require.ErrorIs(t, task.Connect(context.Background()), ErrUnimplementedBackend)
	}

	require.NoError(t, ln.(*net.TCPListener).SetDeadline(time.Now().Add(50*time.Millisecond)))
	conn, err := ln.Accept()
	if conn != nil {
		conn.Close()
	}
	var netErr net.Error
	require.True(t, errors.As(err, &netErr), "expected accept timeout, got %v", err)
	assert.True(t, netErr.Timeout())
}

func TestMakeCustomTask(t *testing.T) {
	ep := makeEndpoint(config.AuthTypeKerberos, 65345)

	base, err := MakeTask(ep)
	require.NoError(t, err)
	custom, err := MakeCustomTask(ep, "custom_point")
	require.NoError(t, err)

	bt, ct := base.Target(), custom.Target()
	assert.Equal(t, types.PointName("custom_point"), ct.Point)
	assert.Equal(t, types.PointName("XE"), bt.Point)
	assert.Equal(t, bt.Host, ct.Host)
	assert.Equal(t, bt.Port, ct.Port)
	assert.Equal(t, bt.Auth, ct.Auth)
	assert.Equal(t, base.Backend().Kind(), custom.Backend().Kind())
}

func TestTaskAccessorsAreStable(t *testing.T) {
	task, err := NewTaskBuilder().
		Target(makeEndpoint(config.AuthTypeStandard, 1521)).
		Backend(StdBackend{}).
		Database(strPtr("PDB1")).
		Build()
	require.NoError(t, err)

	target := task.Target()
	target.Point = "mutated"
	target.Host = "elsewhere"

	for i := 0; i < 3; i++ {
		got := task.Target()
		assert.Equal(t, types.PointName("XE"), got.Point)
		assert.Equal(t, types.HostName("localhost"), got.Host)
		assert.Equal(t, KindStd, task.Backend().Kind())
		db, ok := task.Database()
		assert.True(t, ok)
		assert.Equal(t, "PDB1", db)
	}
}

func TestConcurrentConnect(t *testing.T) {
	task, err := NewTaskBuilder().
		Target(makeEndpoint(config.AuthTypeStandard, 1521)).
		Backend(StdBackend{}).
		Build()
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = task.Target().EasyConnect()
			errs <- task.Connect(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEasyConnect(t *testing.T) {
	tests := []struct {
		name     string
		target   Target
		expected string
	}{
		{"Hostname", Target{Host: "db.example.com", Port: 1521, Point: "ORCL"}, "db.example.com:1521/ORCL"},
		{"IPv6", Target{Host: "::1", Port: 1522, Point: "XE"}, "[::1]:1522/XE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.target.EasyConnect())
		})
	}
}
