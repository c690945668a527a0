// Command overwatch-system-agent reports host metrics (CPU, memory, disks,
// network, outward addresses) to an Overwatch hub.
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
		Name:        "overwatch-system-agent",
		ServiceName: "OverwatchSystemAgent",
		Version:     version,
		Load: func(path string) (app.Config, error) {
			return config.LoadSystem(path)
		},
		New: func(cfg app.Config, opts agent.Options) app.Runner {
			return agent.NewSystemAgent(cfg.(*config.SystemConfig), opts)
		},
	}, os.Args[1:]))
}
