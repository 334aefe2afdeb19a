// Command pivotui is a keyboard jog pendant for a pivoting holder
// served by pivotsrv.  It polls the holder's pose over HTTP and nudges
// the target in response to keypresses.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"

	"github.com/opensurg/pivotctl/generichttp/holder"
	"github.com/opensurg/pivotctl/pivot"
)

type Options struct {
	Addr  string  `long:"addr" default:"http://localhost:8000/or1/holder" description:"Base URL of the holder endpoint"`
	Step  float64 `long:"step" default:"0.02" description:"Jog increment for rotational axes, radians"`
	ZStep float64 `long:"zstep" default:"2" description:"Jog increment for insertion depth, millimeters"`
	Hz    int     `long:"hz" default:"10" description:"Pose poll frequency"`
}

const maxLogs = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	legendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

type poseMsg struct {
	pose  pivot.DOFPose
	ready bool
	err   error
}

type jogResultMsg struct {
	err error
}

type jogModel struct {
	client   *holder.Client
	opts     Options
	pose     pivot.DOFPose
	bounds   pivot.DOFBoundaries
	haveB    bool
	ready    bool
	logs     []string
	quitting bool
}

func (m *jogModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func tick(hz int) tea.Cmd {
	if hz < 1 {
		hz = 1
	}
	return tea.Tick(time.Second/time.Duration(hz), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m jogModel) poll() tea.Cmd {
	return func() tea.Msg {
		pose, err := m.client.CurrentDOFPose()
		if err != nil {
			return poseMsg{err: err}
		}
		return poseMsg{pose: pose, ready: m.client.Ready()}
	}
}

func (m jogModel) fetchBounds() tea.Cmd {
	return func() tea.Msg {
		b, err := m.client.DOFBoundaries()
		if err != nil {
			return poseMsg{err: err}
		}
		return boundsMsg(b)
	}
}

type boundsMsg pivot.DOFBoundaries

func (m jogModel) jog(dPitch, dYaw, dRoll, dZ float64) tea.Cmd {
	target := pivot.DOFPose{
		Pitch:  m.pose.Pitch + dPitch,
		Yaw:    m.pose.Yaw + dYaw,
		Roll:   m.pose.Roll + dRoll,
		TransZ: m.pose.TransZ + dZ,
	}
	if m.haveB {
		target = m.bounds.Clamp(target)
	}
	return func() tea.Msg {
		return jogResultMsg{err: m.client.SetTargetDOFPose(target)}
	}
}

func (m jogModel) stop() tea.Cmd {
	return func() tea.Msg {
		return jogResultMsg{err: m.client.Stop()}
	}
}

func (m jogModel) Init() tea.Cmd {
	return tea.Batch(tick(m.opts.Hz), m.fetchBounds())
}

func (m jogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.poll(), tick(m.opts.Hz))

	case poseMsg:
		if msg.err != nil {
			m.addLog(msg.err.Error())
			return m, nil
		}
		m.pose = msg.pose
		m.ready = msg.ready
		return m, nil

	case boundsMsg:
		m.bounds = pivot.DOFBoundaries(msg)
		m.haveB = true
		return m, nil

	case jogResultMsg:
		if msg.err != nil {
			m.addLog(msg.err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		s := m.opts.Step
		z := m.opts.ZStep
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up":
			return m, m.jog(s, 0, 0, 0)
		case "down":
			return m, m.jog(-s, 0, 0, 0)
		case "left":
			return m, m.jog(0, -s, 0, 0)
		case "right":
			return m, m.jog(0, s, 0, 0)
		case "r":
			return m, m.jog(0, 0, s, 0)
		case "f":
			return m, m.jog(0, 0, -s, 0)
		case "z":
			return m, m.jog(0, 0, 0, z)
		case "x":
			return m, m.jog(0, 0, 0, -z)
		case "s", " ":
			return m, m.stop()
		}
	}
	return m, nil
}

func axisLine(name string, v, min, max float64, haveB bool) string {
	line := fmt.Sprintf("  %-7s %9.4f", name, v)
	if haveB {
		line += legendStyle.Render(fmt.Sprintf("   [%g, %g]", min, max))
	}
	return axisStyle.Render(line)
}

func (m jogModel) View() string {
	if m.quitting {
		return "Jog session ended.\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("pivot holder jog"))
	sb.WriteString("  " + m.opts.Addr + "\n")
	if m.ready {
		sb.WriteString(readyStyle.Render("  READY"))
	} else {
		sb.WriteString(stoppedStyle.Render("  NOT READY"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(axisLine("pitch", m.pose.Pitch, m.bounds.PitchMin, m.bounds.PitchMax, m.haveB) + "\n")
	sb.WriteString(axisLine("yaw", m.pose.Yaw, m.bounds.YawMin, m.bounds.YawMax, m.haveB) + "\n")
	sb.WriteString(axisLine("roll", m.pose.Roll, m.bounds.RollMin, m.bounds.RollMax, m.haveB) + "\n")
	sb.WriteString(axisLine("transZ", m.pose.TransZ, m.bounds.TransZMin, m.bounds.TransZMax, m.haveB) + "\n")
	sb.WriteString("\n")
	sb.WriteString(legendStyle.Render("  arrows: pitch/yaw   r/f: roll   z/x: depth   s: stop   q: quit"))
	sb.WriteString("\n")
	for _, l := range m.logs {
		sb.WriteString(stoppedStyle.Render("  "+l) + "\n")
	}
	return sb.String()
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	m := jogModel{
		client: holder.NewClient(opts.Addr),
		opts:   opts,
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
