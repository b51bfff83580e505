// Package executor runs theme sink plugins regardless of their underlying
// protocol (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	sinkplugin "github.com/jmylchreest/tabtint/pkg/plugin"
)

const (
	infoTimeout  = 5 * time.Second
	applyTimeout = 10 * time.Second
)

// PluginExecutor delivers theme updates to one plugin binary.
type PluginExecutor struct {
	path         string
	protocolType sinkplugin.PluginType
	info         sinkplugin.PluginInfo
	runner       ProcessRunner
	logger       hclog.Logger

	mu        sync.Mutex
	client    *plugin.Client
	rpcClient *sinkplugin.SinkPluginRPCClient
}

// New detects the plugin's protocol and checks it is compatible.
func New(pluginPath string, logger hclog.Logger) (*PluginExecutor, error) {
	return NewWithRunner(pluginPath, logger, NewRealProcessRunner())
}

// NewWithRunner is New with an injected process runner.
func NewWithRunner(pluginPath string, logger hclog.Logger, runner ProcessRunner) (*PluginExecutor, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	info, err := detectInfo(pluginPath, runner)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}

	var protocolType sinkplugin.PluginType
	switch info.PluginProtocol {
	case string(sinkplugin.PluginTypeGoPlugin):
		protocolType = sinkplugin.PluginTypeGoPlugin
	case string(sinkplugin.PluginTypeJSON), "":
		// Empty defaults to json-stdio.
		protocolType = sinkplugin.PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if ok, err := sinkplugin.IsCompatible(info.ProtocolVersion); !ok {
			return nil, fmt.Errorf("plugin %s: %w", pluginPath, err)
		}
	}

	return &PluginExecutor{
		path:         pluginPath,
		protocolType: protocolType,
		info:         info,
		runner:       runner,
		logger:       logger.Named("plugin").With("path", pluginPath),
	}, nil
}

func detectInfo(pluginPath string, runner ProcessRunner) (sinkplugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), infoTimeout)
	defer cancel()

	stdout, _, err := runner.Run(ctx, pluginPath, []string{"--plugin-info"}, nil)
	if err != nil {
		return sinkplugin.PluginInfo{}, fmt.Errorf("failed to query plugin: %w", err)
	}

	var info sinkplugin.PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return sinkplugin.PluginInfo{}, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	return info, nil
}

// Name returns the plugin's declared name, or its path.
func (e *PluginExecutor) Name() string {
	if e.info.Name != "" {
		return e.info.Name
	}
	return e.path
}

// Info returns the metadata reported by --plugin-info.
func (e *PluginExecutor) Info() sinkplugin.PluginInfo {
	return e.info
}

// Protocol returns the detected protocol.
func (e *PluginExecutor) Protocol() sinkplugin.PluginType {
	return e.protocolType
}

// Apply delivers one theme update.
func (e *PluginExecutor) Apply(ctx context.Context, update sinkplugin.ThemeUpdate) error {
	switch e.protocolType {
	case sinkplugin.PluginTypeGoPlugin:
		client, err := e.getRPCClient()
		if err != nil {
			return err
		}
		return client.Apply(ctx, update)
	case sinkplugin.PluginTypeJSON:
		return e.applyJSON(ctx, update)
	default:
		return fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// Close stops a running go-plugin process.
func (e *PluginExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// getRPCClient starts the plugin on first use and keeps it running.
func (e *PluginExecutor) getRPCClient() (*sinkplugin.SinkPluginRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil && e.client != nil && !e.client.Exited() {
		return e.rpcClient, nil
	}

	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: sinkplugin.Handshake,
		Plugins: map[string]plugin.Plugin{
			sinkplugin.PluginName: &sinkplugin.SinkPluginRPC{},
		},
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(sinkplugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*sinkplugin.SinkPluginRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

func (e *PluginExecutor) applyJSON(ctx context.Context, update sinkplugin.ThemeUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal theme update: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(execCtx, e.path, nil, bytes.NewReader(data))
	if err != nil {
		if ctxErr := execCtx.Err(); ctxErr != nil {
			return fmt.Errorf("plugin execution failed: %w", ctxErr)
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("plugin execution failed: %s", msg)
	}
	if out := strings.TrimSpace(string(stdout)); out != "" {
		e.logger.Debug("plugin output", "stdout", out)
	}
	return nil
}
