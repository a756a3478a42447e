package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/routing"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	devicesView view = iota
	usageView
	dashboardView
	viewCount
)

var tabNames = []string{"Devices", "Usage", "Dashboard"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select device"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload topology"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Refresh, k.Clear, k.Quit},
	}
}

// deviceItem adapts a device to the list component
type deviceItem struct {
	device *topology.Device
}

func (i deviceItem) Title() string       { return i.device.Name }
func (i deviceItem) Description() string { return fmt.Sprintf("%s · %s", i.device.ID, i.device.Type) }
func (i deviceItem) FilterValue() string { return i.device.ID + " " + i.device.Name }

type model struct {
	svc         *analysis.Service
	inspector   *routing.Inspector
	currentView view
	deviceList  list.Model
	routeTable  table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	stats       analysis.TopologyStats
	congested   []topology.LinkUsage
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(svc *analysis.Service) model {
	dl := list.New(nil, list.NewDefaultDelegate(), 40, 20)
	dl.Title = "Devices"
	dl.SetShowHelp(false)

	columns := []table.Column{
		{Title: "Destination", Width: 12},
		{Title: "Next hop", Width: 12},
		{Title: "Interface", Width: 12},
		{Title: "Metric", Width: 10},
		{Title: "Path", Width: 40},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		svc:         svc,
		inspector:   routing.NewInspector(svc.Generator()),
		currentView: devicesView,
		deviceList:  dl,
		routeTable:  t,
		help:        help.New(),
		keys:        keys,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.deviceList.SetSize(msg.Width/3, max(msg.Height-10, 5))

	case tickMsg:
		m.refreshStats()
		return m, tickCmd()

	case tea.KeyMsg:
		// the list owns the keyboard while filtering
		if m.deviceList.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == devicesView {
				m.selectDevice()
				return m, nil
			}

		case key.Matches(msg, m.keys.Clear):
			if m.inspector.Selected() != nil {
				m.inspector.Clear()
				m.routeTable.SetRows(nil)
				m.message = ""
				return m, nil
			}

		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil
		}
	}

	if m.currentView == devicesView {
		m.deviceList, cmd = m.deviceList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// selectDevice makes the highlighted device the inspected one and computes
// its routing table
func (m *model) selectDevice() {
	item, ok := m.deviceList.SelectedItem().(deviceItem)
	if !ok {
		return
	}
	v, err := m.svc.View()
	if err == nil {
		err = m.inspector.SelectDevice(v, item.device.ID)
	}
	if err != nil {
		m.message = fmt.Sprintf("Cannot select %s: %v", item.device.ID, err)
		m.messageErr = true
		return
	}

	routes := m.inspector.Routes()
	rows := make([]table.Row, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, table.Row{r.Destination, r.NextHop, r.Interface, formatMetric(r.Metric), r.Path})
	}
	m.routeTable.SetRows(rows)
	m.message = fmt.Sprintf("%s: %d route(s)", item.device.Name, len(routes))
	m.messageErr = false
}

// reload re-activates the current topology from its source
func (m *model) reload() {
	id := m.stats.TopologyID
	if id == "" || m.svc.Source() == nil {
		m.message = "Nothing to reload"
		m.messageErr = true
		return
	}
	if _, err := m.svc.Activate(context.Background(), id); err != nil {
		m.message = fmt.Sprintf("Reload failed: %v", err)
		m.messageErr = true
		return
	}
	m.refresh()
	m.message = fmt.Sprintf("Reloaded %s (version %d)", id, m.stats.Version)
	m.messageErr = false
}

// refresh rebuilds the device list from the active topology
func (m *model) refresh() {
	v, err := m.svc.View()
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	devices := v.Index.Devices()
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = deviceItem{device: d}
	}
	m.deviceList.SetItems(items)
	m.refreshStats()
}

func (m *model) refreshStats() {
	st, err := m.svc.Stats()
	if err != nil {
		return
	}
	m.stats = st
	m.congested, _ = m.svc.CongestedLinks(planning.BottleneckPercent)
}

// stale reports whether the routing table was computed against an older
// topology version than the active one
func (m model) stale() bool {
	return m.inspector.Selected() != nil && m.inspector.Version() != m.stats.Version
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Netplan Inspector"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case devicesView:
		s.WriteString(m.renderDevices())
	case usageView:
		s.WriteString(m.renderUsage())
	case dashboardView:
		s.WriteString(m.renderDashboard())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderDevices() string {
	var right strings.Builder

	selected := m.inspector.Selected()
	if selected == nil {
		right.WriteString(headerStyle.Render("Routing table"))
		right.WriteString("\n\n")
		right.WriteString(helpStyle.Render("Select a device with enter"))
	} else {
		right.WriteString(headerStyle.Render("Routing table of " + selected.Name))
		right.WriteString("\n\n")
		right.WriteString(m.routeTable.View())

		neighbours := m.inspector.ConnectedDevices()
		names := make([]string, len(neighbours))
		for i, d := range neighbours {
			names[i] = d.Name
		}
		right.WriteString("\n\nConnected: ")
		right.WriteString(strings.Join(names, ", "))

		if m.stale() {
			right.WriteString("\n\n")
			right.WriteString(warnStyle.Render("Topology changed since selection; press enter to recompute"))
		}
	}

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, m.deviceList.View(), "  ", right.String()),
	)
}

func (m model) renderUsage() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("Links above %.0f%%", planning.BottleneckPercent)))
	s.WriteString("\n\n")

	if len(m.congested) == 0 {
		s.WriteString(successStyle.Render("No congested links"))
		return contentStyle.Render(s.String())
	}
	for _, lu := range m.congested {
		filled := max(0, min(int(lu.Percent/5), 20))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
		fmt.Fprintf(&s, "%-10s %-10s %s %5.1f%%  %.0f/%.0f Mbps\n",
			lu.Link.ID, lu.Link.Type, warnStyle.Render(bar), lu.Percent, lu.Link.CurrentBandwidth, lu.Link.MaxBandwidth)
	}
	return contentStyle.Render(s.String())
}

func (m model) renderDashboard() string {
	st := m.stats
	statsContent := fmt.Sprintf(`Topology
━━━━━━━━━━━━━━━
ID:        %s
Version:   %d
Devices:   %d
Links:     %d
ISPs:      %d`,
		st.TopologyID, st.Version, st.Devices, st.Links, st.ISPs)

	health := successStyle.Render("connected")
	if !st.Connected {
		health = warnStyle.Render("partitioned")
	}
	healthContent := fmt.Sprintf(`Health
━━━━━━━━━━━━━━━
Graph:     %s
Issues:    %d
Congested: %d`,
		health, st.Issues, st.Congested)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBoxStyle.Render(statsContent), statsBoxStyle.Render(healthContent)),
	)
}

func formatMetric(a cost.Amount) string {
	if a.IsUnbounded() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(a))
}
