// Command overwatch-log-agent watches log files for error lines and reports
// them to an Overwatch hub.
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
		Name:        "overwatch-log-agent",
		ServiceName: "OverwatchLogAgent",
		Version:     version,
		Load: func(path string) (app.Config, error) {
			return config.LoadLogAgent(path)
		},
		New: func(cfg app.Config, opts agent.Options) app.Runner {
			return agent.NewLogAgent(cfg.(*config.LogAgentConfig), opts)
		},
	}, os.Args[1:]))
}
