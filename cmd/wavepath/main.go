// wavepath runs the flow field pathfinding interactively in the terminal.
//
// Obstacles, the goal and the agents are edited with typed commands (type "h" for help), and the
// paths are redrawn on the first tick after each change.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/janpfeifer/must"
	"github.com/janpfeifer/wavepath/internal/config"
	"github.com/janpfeifer/wavepath/internal/driver"
	"github.com/janpfeifer/wavepath/internal/ui/cli"
	"github.com/janpfeifer/wavepath/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagConfigFile = flag.String("config_file", "", "YAML file with the startup configuration. "+
		"Fields not set keep their default values.")
	flagConfig = flag.String("config", "", "Comma separated key=value pairs overriding the configuration, "+
		"e.g. \"width=24,height=12,goal=3:3,starts=20:9;2:9\".")
	flagColor = flag.Bool("color", true, "Use colors in the terminal.")
	flagClear = flag.Bool("clear", false, "Clear the screen before every redraw.")
	flagDump  = flag.Bool("dump", false, "Print the JSON snapshot of the first tick and exit.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	cfg := must.M1(loadConfig())
	klog.V(1).Infof("Configuration: %+v", cfg)
	d := driver.New(cfg)
	if *flagDump {
		must.M(d.Snapshot(true).WriteJSON(os.Stdout))
		return
	}

	ui := cli.New(os.Stdin, os.Stdout, *flagColor, *flagClear)
	if err := ui.Run(ctx, d); err != nil && !errors.Is(err, context.Canceled) {
		spinning.Reset()
		klog.Exitf("Failed: %+v", err)
	}
}

// loadConfig applies, in order, the defaults, the -config_file and the -config flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *flagConfigFile != "" {
		var err error
		cfg, err = config.Load(*flagConfigFile)
		if err != nil {
			return cfg, err
		}
	}
	if *flagConfig != "" {
		if err := cfg.ApplyConfigString(*flagConfig); err != nil {
			return cfg, errors.WithMessage(err, "invalid -config")
		}
	}
	return cfg, nil
}
