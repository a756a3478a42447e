package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

const usage = `Usage: netplan [flags] <command> [args]

Commands:
  topologies                         List available topologies
  path <from> <to>                   Path with the fewest hops
  shortest-path <from> <to>          Cheapest path under the cost model
  routes <device>                    Routing table of a device
  tables                             Routing tables of every device
  plan [-mode m] <device> <mbps>     Capacity plan for new traffic at a device
  usage [-threshold pct]             Links above a utilisation threshold
  usage device <id>                  Bandwidth on the links of a device
  validate <file>                    Check a topology document
  export <file>                      Write the active topology (.yaml, .json, .json.sz)
  shell                              Interactive session

Flags:
`

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("netplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML config file")
	kind := fs.String("source", "", "Topology source: seeds, dir or postgres (overrides config)")
	dataDir := fs.String("data", "", "Topology directory for the dir source")
	topologyID := fs.String("topology", "", "Topology to activate (default from config)")
	file := fs.String("file", "", "Load a single topology document instead of a source")
	jsonOut := fs.Bool("json", false, "Print JSON instead of tables")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "netplan: %v\n", err)
		return 1
	}
	if *kind != "" {
		cfg.Source.Kind = *kind
	}
	if *dataDir != "" {
		cfg.Source.DataDir = *dataDir
	}
	if *topologyID != "" {
		cfg.Source.Activate = *topologyID
	}

	// diagnostics go to stderr so command output stays machine readable
	logger := logging.NewJSONLogger(stderr, logging.WarnLevel)

	var src source.Source
	if *file == "" {
		src, err = source.Open(ctx, cfg.SourceOptions(), logger)
		if err != nil {
			fmt.Fprintf(stderr, "netplan: open source: %v\n", err)
			return 1
		}
		defer source.Close(src)
	}

	svc := analysis.New(analysis.Options{
		Source:  src,
		Model:   cfg.CostModel(),
		Logger:  logger,
		Workers: cfg.Workers,
	})

	cli := &CLI{svc: svc, out: stdout, json: *jsonOut}
	switch {
	case *file != "":
		err = cli.loadFile(*file)
	case cfg.Source.Activate != "" && fs.Arg(0) != "topologies" && fs.Arg(0) != "validate":
		_, err = svc.Activate(ctx, cfg.Source.Activate)
	}
	if err != nil {
		fmt.Fprintf(stderr, "netplan: %v\n", err)
		return 1
	}

	if err := cli.Execute(ctx, fs.Args()); err != nil {
		fmt.Fprintf(stderr, "netplan: %v\n", err)
		return 1
	}
	return 0
}

// loadFile installs a topology document read from path. Structural problems
// are reported but do not stop the load; the index skips broken records.
func (cli *CLI) loadFile(path string) error {
	t, err := readTopology(path)
	if err != nil {
		return err
	}
	if err := validation.ValidateTopology(t); err != nil {
		cli.printProblems(err)
	}
	_, err = cli.svc.Replace(t)
	return err
}

func readTopology(path string) (*topology.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := source.DetectFormat(path)
	if format == source.FormatUnknown {
		return nil, fmt.Errorf("%s: unknown topology format", path)
	}
	return source.Decode(data, format)
}
