package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/droidinput/server"
	"github.com/sevlyar/go-daemon"
)

const (
	// DaemonEnvVar is the environment variable that marks a daemon child process
	DaemonEnvVar = "DROIDINPUT_DAEMON_CHILD"

	// shutdownRequestID is the JSON-RPC request ID for shutdown commands
	shutdownRequestID = 1

	killTimeout = 10 * time.Second
)

// pathFlags name the flags whose values are file paths. The child runs in
// "/", so relative values must be resolved before it starts.
var pathFlags = []string{"--config", "--log-file"}

// AbsPathArgs returns args with the values of path flags made absolute.
// Both "--flag value" and "--flag=value" forms are handled.
func AbsPathArgs(args []string) ([]string, error) {
	out := make([]string, len(args))
	copy(out, args)

next:
	for i := 0; i < len(out); i++ {
		for _, flag := range pathFlags {
			switch {
			case out[i] == flag && i+1 < len(out):
				abs, err := filepath.Abs(out[i+1])
				if err != nil {
					return nil, fmt.Errorf("failed to resolve %s: %w", flag, err)
				}
				out[i+1] = abs
				i++
				continue next
			case strings.HasPrefix(out[i], flag+"="):
				abs, err := filepath.Abs(strings.TrimPrefix(out[i], flag+"="))
				if err != nil {
					return nil, fmt.Errorf("failed to resolve %s: %w", flag, err)
				}
				out[i] = flag + "=" + abs
				continue next
			}
		}
	}
	return out, nil
}

// Daemonize detaches the process and returns the child process handle.
// If the returned process is nil, this is the child process.
// When logFile is empty the child's output is discarded.
func Daemonize(logFile string) (*os.Process, error) {
	args, err := AbsPathArgs(os.Args)
	if err != nil {
		return nil, err
	}

	var logPerm os.FileMode
	if logFile != "" {
		logPerm = 0o640
		if logFile, err = filepath.Abs(logFile); err != nil {
			return nil, fmt.Errorf("failed to resolve log file: %w", err)
		}
	}

	ctx := &daemon.Context{
		PidFileName: "",
		PidFilePerm: 0,
		LogFileName: logFile,
		LogFilePerm: logPerm,
		WorkDir:     "/",
		Umask:       027,
		Args:        args,
		Env:         append(os.Environ(), fmt.Sprintf("%s=1", DaemonEnvVar)),
	}

	child, err := ctx.Reborn()
	if err != nil {
		return nil, fmt.Errorf("failed to daemonize: %w", err)
	}

	return child, nil
}

// IsChild returns true if this is the daemon child process
func IsChild() bool {
	return os.Getenv(DaemonEnvVar) == "1"
}

// RPCURL turns a listen address into the server's /rpc URL.
func RPCURL(addr string) string {
	// bare port number
	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err == nil {
			addr = ":" + addr
		}
	}

	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return strings.TrimSuffix(addr, "/") + "/rpc"
}

// KillServer asks a running server to stop via the server.shutdown method.
func KillServer(addr, token string) error {
	url := RPCURL(addr)

	reqBody := server.JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "server.shutdown",
		ID:      shutdownRequestID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: killTimeout}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return fmt.Errorf("server is not running on %s", addr)
		}
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Status)
	}

	var rpcResp server.JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("server rejected shutdown: %v", rpcResp.Error)
	}

	return nil
}
