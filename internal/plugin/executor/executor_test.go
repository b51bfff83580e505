package executor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	sinkplugin "github.com/jmylchreest/tabtint/pkg/plugin"
)

const jsonInfo = `{"name":"recorder","version":"0.1.0","protocol_version":"1.0.0","plugin_protocol":"json-stdio"}`

// TestNewDetectsJSONProtocol tests protocol detection through --plugin-info.
func TestNewDetectsJSONProtocol(t *testing.T) {
	runner := &mockProcessRunner{info: jsonInfo}

	executor, err := NewWithRunner("/plugins/recorder", nil, runner)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}
	defer executor.Close()

	if executor.Protocol() != sinkplugin.PluginTypeJSON {
		t.Errorf("Expected protocol type JSON, got %s", executor.Protocol())
	}
	if executor.Name() != "recorder" {
		t.Errorf("Expected name 'recorder', got '%s'", executor.Name())
	}
}

// TestNewDefaultsToJSON tests that an empty plugin_protocol means json-stdio.
func TestNewDefaultsToJSON(t *testing.T) {
	runner := &mockProcessRunner{info: `{"name":""}`}

	executor, err := NewWithRunner("/plugins/anon", nil, runner)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}
	if executor.Protocol() != sinkplugin.PluginTypeJSON {
		t.Errorf("Expected protocol type JSON, got %s", executor.Protocol())
	}
	if executor.Name() != "/plugins/anon" {
		t.Errorf("Expected name to fall back to path, got '%s'", executor.Name())
	}
}

// TestNewRejectsBadPlugins tests detection failures.
func TestNewRejectsBadPlugins(t *testing.T) {
	tests := []struct {
		name string
		info string
		want string
	}{
		{name: "not json", info: "hello", want: "failed to parse plugin info"},
		{name: "unknown protocol", info: `{"plugin_protocol":"grpc-web"}`, want: "unknown plugin_protocol"},
		{name: "incompatible", info: `{"protocol_version":"0.0.1"}`, want: "incompatible major version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithRunner("/plugins/bad", nil, &mockProcessRunner{info: tt.info})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestNewMissingBinary tests creating an executor for a plugin that does not exist.
func TestNewMissingBinary(t *testing.T) {
	if _, err := New("/nonexistent/plugin", nil); err == nil {
		t.Error("Expected error for nonexistent plugin")
	}
}

// TestApplyJSONSendsUpdate tests that the update is written to stdin.
func TestApplyJSONSendsUpdate(t *testing.T) {
	runner := &mockProcessRunner{info: jsonInfo}
	executor, err := NewWithRunner("/plugins/recorder", nil, runner)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	update := sinkplugin.ThemeUpdate{WindowID: 2, Scheme: "light", Colour: "#ffffff", Reason: "COLOUR_PICKED"}
	if err := executor.Apply(context.Background(), update); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	var got sinkplugin.ThemeUpdate
	if err := json.Unmarshal(runner.lastData, &got); err != nil {
		t.Fatalf("stdin was not a theme update: %v", err)
	}
	if got.WindowID != 2 || got.Colour != "#ffffff" {
		t.Errorf("Plugin received %+v", got)
	}
	if len(runner.calls) != 2 || len(runner.calls[1]) != 0 {
		t.Errorf("Expected one info call then one apply call without args, got %v", runner.calls)
	}
}

// TestApplyJSONError tests that stderr is surfaced on failure.
func TestApplyJSONError(t *testing.T) {
	runner := &mockProcessRunner{
		info: jsonInfo,
		runFunc: func(context.Context, []string, []byte) ([]byte, []byte, error) {
			return nil, []byte("cannot write state file\n"), errors.New("exit status 2")
		},
	}
	executor, err := NewWithRunner("/plugins/recorder", nil, runner)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	err = executor.Apply(context.Background(), sinkplugin.ThemeUpdate{})
	if err == nil || !strings.Contains(err.Error(), "cannot write state file") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

// TestApplyJSONTimeout tests timeout handling.
func TestApplyJSONTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping timeout test in short mode")
	}

	runner := &mockProcessRunner{info: jsonInfo, block: true}
	executor, err := NewWithRunner("/plugins/slow", nil, runner)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = executor.Apply(ctx, sinkplugin.ThemeUpdate{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded error, got: %v", err)
	}
}

// TestApplyUnsupportedProtocol tests the unsupported protocol branch.
func TestApplyUnsupportedProtocol(t *testing.T) {
	executor := &PluginExecutor{path: "/x", protocolType: "carrier-pigeon"}
	if err := executor.Apply(context.Background(), sinkplugin.ThemeUpdate{}); err == nil {
		t.Error("Expected error for unsupported protocol")
	}
}

// TestCloseWithoutClient tests that Close is safe before first use.
func TestCloseWithoutClient(t *testing.T) {
	executor := &PluginExecutor{path: "/x"}
	executor.Close()
	executor.Close()
}

// TestRealRunnerScript runs a JSON-stdio plugin script end to end.
func TestRealRunnerScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "received.json")
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--plugin-info\" ]; then echo '" + jsonInfo + "'; exit 0; fi\n" +
		"cat > " + out + "\n"
	pluginPath := filepath.Join(dir, "recorder.sh")
	if err := os.WriteFile(pluginPath, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write test script: %v", err)
	}

	executor, err := New(pluginPath, nil)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}
	if err := executor.Apply(context.Background(), sinkplugin.ThemeUpdate{WindowID: 9, Scheme: "dark"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("plugin did not write output: %v", err)
	}
	if !strings.Contains(string(data), `"window_id":9`) {
		t.Errorf("Unexpected plugin input: %s", data)
	}
}
