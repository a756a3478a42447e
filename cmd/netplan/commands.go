package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

var errUsage = errors.New("invalid arguments")

// CLI runs commands against an analysis service
type CLI struct {
	svc  *analysis.Service
	out  io.Writer
	json bool
}

// Execute runs one command
func (cli *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "topologies", "ls":
		return cli.topologies(ctx)
	case "path":
		return cli.path(rest, analysis.AlgorithmBFS)
	case "shortest-path", "sp":
		return cli.path(rest, analysis.AlgorithmDijkstra)
	case "routes":
		return cli.routes(rest)
	case "tables":
		return cli.tables(ctx)
	case "plan":
		return cli.plan(rest)
	case "usage":
		return cli.usage(rest)
	case "validate":
		return cli.validate(rest)
	case "export":
		return cli.export(rest)
	case "stats":
		return cli.stats()
	case "shell":
		return cli.shell(ctx, os.Stdin)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (cli *CLI) topologies(ctx context.Context) error {
	list, err := cli.svc.Topologies(ctx)
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(list)
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		active := ""
		if s.Active {
			active = "*"
		}
		rows = append(rows, []string{active, s.ID, s.Name, s.Description})
	}
	cli.printTable([]string{"", "ID", "Name", "Description"}, rows)
	return nil
}

func (cli *CLI) path(args []string, algo analysis.Algorithm) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: expected <from> <to>", errUsage)
	}
	req := validation.PathRequest{From: args[0], To: args[1]}
	if err := validation.ValidatePathRequest(&req); err != nil {
		return err
	}

	res, err := cli.svc.Path(req.From, req.To, algo)
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(res)
	}
	if !res.Found {
		fmt.Fprintln(cli.out, warnStyle.Render(fmt.Sprintf("No path from %s to %s", res.From, res.To)))
		return nil
	}

	fmt.Fprintln(cli.out, titleStyle.Render(fmt.Sprintf("%s path %s → %s", res.Algorithm, res.From, res.To)))
	fmt.Fprintln(cli.out, strings.Join(res.Names, " → "))
	fmt.Fprintf(cli.out, "Hops: %d   Links: %s   Weight: %s\n",
		res.Hops, strings.Join(res.Links, ", "), formatAmount(res.Weight))
	return nil
}

func (cli *CLI) routes(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected <device>", errUsage)
	}
	routes, err := cli.svc.Routes(args[0])
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(routes)
	}

	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, []string{r.Destination, r.NextHop, r.Interface, formatAmount(r.Metric), r.Path})
	}
	fmt.Fprintln(cli.out, titleStyle.Render("Routing table of "+args[0]))
	cli.printTable([]string{"Destination", "Next hop", "Interface", "Metric", "Path"}, rows)
	return nil
}

func (cli *CLI) tables(ctx context.Context) error {
	tables, err := cli.svc.RoutingTables(ctx)
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(tables)
	}

	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		for _, r := range t.Routes {
			rows = append(rows, []string{t.Device, r.Destination, r.NextHop, r.Interface, formatAmount(r.Metric)})
		}
	}
	fmt.Fprintln(cli.out, titleStyle.Render(fmt.Sprintf("Routing tables of %d devices", len(tables))))
	cli.printTable([]string{"Device", "Destination", "Next hop", "Interface", "Metric"}, rows)
	return nil
}

func (cli *CLI) plan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mode := fs.String("mode", string(planning.ModeViaConnectionPoint), "via-connection-points or direct")
	name := fs.String("name", "", "Name of the device being added")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: expected [-mode m] <device> <mbps>", errUsage)
	}
	mbps, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("%w: mbps must be a number", errUsage)
	}

	req := planning.Request{
		DeviceID:      fs.Arg(0),
		RequiredMbps:  mbps,
		Mode:          planning.Mode(*mode),
		NewDeviceName: *name,
	}
	if err := validation.ValidatePlanRequest(&req); err != nil {
		return err
	}

	plan, err := cli.svc.Plan(req)
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(plan)
	}

	fmt.Fprintln(cli.out, titleStyle.Render(fmt.Sprintf("Capacity plan for %s, %.0f Mbps (%s)", req.DeviceID, req.RequiredMbps, plan.RunID)))
	rows := make([][]string, 0, len(plan.Analyses))
	for i, a := range plan.Analyses {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.RouteName,
			a.Path,
			formatAmount(a.TotalCost),
			strconv.Itoa(len(a.Bottlenecks)),
			strconv.Itoa(len(a.Upgrades)),
			renderStatus(a.Status),
		})
	}
	cli.printTable([]string{"#", "Route", "Path", "Cost", "Bottlenecks", "Upgrades", "Status"}, rows)

	if best, ok := plan.Best(); ok && len(best.Upgrades) > 0 {
		fmt.Fprintln(cli.out, subtleStyle.Render("Upgrades for "+best.RouteName+":"))
		for _, u := range best.Upgrades {
			fmt.Fprintf(cli.out, "  %s: %.0f → %.0f Mbps, cost %.2f\n", u.Description, u.CurrentCapacity, u.SuggestedCapacity, u.Cost)
		}
	}
	return nil
}

func (cli *CLI) usage(args []string) error {
	if len(args) == 2 && args[0] == "device" {
		u, err := cli.svc.DeviceUsage(args[1])
		if err != nil {
			return err
		}
		if cli.json {
			return cli.printJSON(u)
		}
		cli.printTable([]string{"Device", "Inbound", "Outbound", "Total"}, [][]string{{
			u.DeviceID, formatMbps(u.Inbound), formatMbps(u.Outbound), formatMbps(u.Total),
		}})
		return nil
	}

	fs := flag.NewFlagSet("usage", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	threshold := fs.Float64("threshold", planning.BottleneckPercent, "Utilisation threshold in percent")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := validation.ValidateUsageThreshold(*threshold); err != nil {
		return err
	}

	links, err := cli.svc.CongestedLinks(*threshold)
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(links)
	}
	rows := make([][]string, 0, len(links))
	for _, lu := range links {
		rows = append(rows, []string{
			lu.Link.ID, lu.Link.Type, formatMbps(lu.Link.CurrentBandwidth), formatMbps(lu.Link.MaxBandwidth), usageBar(lu.Percent),
		})
	}
	fmt.Fprintln(cli.out, titleStyle.Render(fmt.Sprintf("Links above %.0f%%", *threshold)))
	cli.printTable([]string{"Link", "Type", "Current", "Max", "Usage"}, rows)
	return nil
}

func (cli *CLI) validate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected <file>", errUsage)
	}
	t, err := readTopology(args[0])
	if err != nil {
		return err
	}
	if err := validation.ValidateTopology(t); err != nil {
		cli.printProblems(err)
		return errors.New("topology is invalid")
	}
	fmt.Fprintln(cli.out, okStyle.Render(fmt.Sprintf("%s: %d devices, %d links, valid", t.ID, len(t.Devices), len(t.Links))))
	return nil
}

func (cli *CLI) export(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected <file>", errUsage)
	}
	path := args[0]
	format := source.DetectFormat(path)
	if format == source.FormatUnknown {
		return fmt.Errorf("%s: use a .yaml, .json or %s extension", path, source.SnapshotExt)
	}

	v, err := cli.svc.View()
	if err != nil {
		return err
	}
	data, err := source.Encode(v.Topology, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, okStyle.Render(fmt.Sprintf("wrote %s (%s, %d bytes)", path, format, len(data))))
	return nil
}

func (cli *CLI) stats() error {
	st, err := cli.svc.Stats()
	if err != nil {
		return err
	}
	if cli.json {
		return cli.printJSON(st)
	}
	cli.printTable([]string{"Topology", "Version", "Devices", "Links", "ISPs", "Issues", "Congested", "Connected"}, [][]string{{
		st.TopologyID,
		strconv.FormatUint(st.Version, 10),
		strconv.Itoa(st.Devices),
		strconv.Itoa(st.Links),
		strconv.Itoa(st.ISPs),
		strconv.Itoa(st.Issues),
		strconv.Itoa(st.Congested),
		strconv.FormatBool(st.Connected),
	}})
	return nil
}

// shell reads commands from in until EOF or exit
func (cli *CLI) shell(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(cli.out, "Type 'help' for available commands, 'exit' to quit")

	for {
		fmt.Fprint(cli.out, "netplan> ")
		if !scanner.Scan() {
			fmt.Fprintln(cli.out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprint(cli.out, usage)
			continue
		case "shell":
			continue
		}

		if err := cli.Execute(ctx, strings.Fields(input)); err != nil {
			fmt.Fprintln(cli.out, errorStyle.Render("✗ "+err.Error()))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (cli *CLI) printJSON(v any) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *CLI) printProblems(err error) {
	var topoErr *validation.TopologyError
	if !errors.As(err, &topoErr) {
		fmt.Fprintln(cli.out, errorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(cli.out, warnStyle.Render(fmt.Sprintf("%s: %d problem(s)", topoErr.TopologyID, len(topoErr.Problems))))
	rows := make([][]string, 0, len(topoErr.Problems))
	for _, p := range topoErr.Problems {
		rows = append(rows, []string{p.Field, p.Message})
	}
	cli.printTable([]string{"Field", "Problem"}, rows)
}
