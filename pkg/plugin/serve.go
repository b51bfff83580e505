package plugin

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a go-plugin sink. It answers --plugin-info itself, so
// a plugin's main can consist of a single call to Serve.
func Serve(impl SinkPlugin) {
	if len(os.Args) > 1 && os.Args[1] == "--plugin-info" {
		if err := WriteInfo(os.Stdout, impl.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &SinkPluginRPC{Impl: impl},
		},
	})
}

// WriteInfo writes plugin metadata in the --plugin-info format.
func WriteInfo(w io.Writer, info PluginInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
