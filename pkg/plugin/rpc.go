// Package plugin provides the public API for tabtint theme sink plugins.
package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// SinkPluginRPC implements the go-plugin Plugin interface for sink plugins.
type SinkPluginRPC struct {
	plugin.Plugin
	Impl SinkPlugin
}

// Server returns an RPC server for this plugin.
func (p *SinkPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &SinkPluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *SinkPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &SinkPluginRPCClient{client: c}, nil
}

// SinkPluginRPCServer is the RPC server implementation for sink plugins.
type SinkPluginRPCServer struct {
	Impl SinkPlugin
}

// Apply implements the RPC method for theme delivery. Plugin errors are
// returned in resp so they survive the RPC boundary as RPCError.
func (s *SinkPluginRPCServer) Apply(update ThemeUpdate, resp *string) error {
	if err := s.Impl.Apply(context.Background(), update); err != nil {
		*resp = err.Error()
	}
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *SinkPluginRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// SinkPluginRPCClient is the RPC client implementation for sink plugins.
type SinkPluginRPCClient struct {
	client *rpc.Client
}

// Apply calls the remote Apply method.
func (c *SinkPluginRPCClient) Apply(_ context.Context, update ThemeUpdate) error {
	var errMsg string
	if err := c.client.Call("Plugin.Apply", update, &errMsg); err != nil {
		return err
	}
	if errMsg != "" {
		return &RPCError{Message: errMsg}
	}
	return nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *SinkPluginRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
