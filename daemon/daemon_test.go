package daemon

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/executor"
	"github.com/mobile-next/droidinput/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"12000", "http://localhost:12000/rpc"},
		{":12000", "http://localhost:12000/rpc"},
		{"localhost:12000", "http://localhost:12000/rpc"},
		{"0.0.0.0:13000", "http://0.0.0.0:13000/rpc"},
		{"http://127.0.0.1:5000/", "http://127.0.0.1:5000/rpc"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, RPCURL(tt.addr))
		})
	}
}

func newShutdownTarget(t *testing.T, token string) (*server.Server, string) {
	t.Helper()
	noop := executor.RunnerFunc(func(ctx context.Context, argv []string) (int, []byte, error) {
		return 0, nil, nil
	})
	srv := server.New(bridge.New(executor.New(noop)), server.Options{Token: token})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func TestKillServer(t *testing.T) {
	srv, url := newShutdownTarget(t, "")

	require.NoError(t, KillServer(url, ""))

	select {
	case <-srv.Done():
	default:
		t.Fatal("expected shutdown to be requested")
	}
}

func TestKillServer_Token(t *testing.T) {
	srv, url := newShutdownTarget(t, "tok")

	err := KillServer(url, "")
	assert.ErrorContains(t, err, "401")

	require.NoError(t, KillServer(url, "tok"))
	<-srv.Done()
}

func TestKillServer_NotRunning(t *testing.T) {
	err := KillServer("127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestIsChild(t *testing.T) {
	t.Setenv(DaemonEnvVar, "1")
	assert.True(t, IsChild())

	t.Setenv(DaemonEnvVar, "")
	assert.False(t, IsChild())
}

func TestAbsPathArgs(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	args := []string{
		"droidinput", "server", "start", "-d",
		"--config", "droidinput.ini",
		"--log-file=logs/server.log",
		"--listen", "localhost:12000",
		"--config=/etc/droidinput.ini",
	}

	got, err := AbsPathArgs(args)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"droidinput", "server", "start", "-d",
		"--config", filepath.Join(wd, "droidinput.ini"),
		"--log-file=" + filepath.Join(wd, "logs", "server.log"),
		"--listen", "localhost:12000",
		"--config=/etc/droidinput.ini",
	}, got)

	// the input is not modified
	assert.Equal(t, "droidinput.ini", args[5])
}

func TestAbsPathArgs_TrailingFlag(t *testing.T) {
	got, err := AbsPathArgs([]string{"droidinput", "--config"})
	require.NoError(t, err)
	assert.Equal(t, []string{"droidinput", "--config"}, got)
}
