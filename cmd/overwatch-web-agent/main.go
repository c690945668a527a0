// Command overwatch-web-agent checks web targets (TLS certificate, HTTP
// status, expected content) and reports them to an Overwatch hub.
package main

import (
	"os"

	"github.com/Guliveer/overwatch-agents/internal/agent"
	"github.com/Guliveer/overwatch-agents/internal/app"
	"github.com/Guliveer/overwatch-agents/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(app.Main(app.Program{
		Name:        "overwatch-web-agent",
		ServiceName: "OverwatchWebAgent",
		Version:     version,
		Load: func(path string) (app.Config, error) {
			return config.LoadWebAgent(path)
		},
		New: func(cfg app.Config, opts agent.Options) app.Runner {
			return agent.NewWebAgent(cfg.(*config.WebAgentConfig), opts)
		},
	}, os.Args[1:]))
}
