// Package ui provides the tview terminal dashboard used in follow mode. All
// exported methods are safe to call from the ingest and stats loops and are
// nil-safe so headless runs can keep a nil *Dashboard.
package ui

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"sensormon/aggregate"
	"sensormon/record"
)

const maxEventLines = 500

const (
	accentTag   = "[#00bfff]"
	accentReset = "[-]"
)

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorDeepSkyBlue
)

// Dashboard is the live follow-mode view: overall counts, faulty sensors,
// top healthy sensors and a scrolling system log pane.
type Dashboard struct {
	app *tview.Application

	ready  chan struct{}
	stop   sync.Once
	onQuit func()

	header    *tview.TextView
	statsView *tview.TextView
	faulty    *tview.TextView
	healthy   *tview.TextView
	recent    *tview.TextView
	events    *tview.TextView
}

// NewDashboard builds and starts the dashboard. It returns nil when disabled
// so callers can use the nil-safe methods unconditionally. onQuit runs once
// when the operator presses q or Ctrl-C.
func NewDashboard(enable bool, onQuit func()) *Dashboard {
	if !enable {
		return nil
	}

	app := tview.NewApplication()
	ready := make(chan struct{})
	var once sync.Once
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		once.Do(func() { close(ready) })
		return false
	})

	d := &Dashboard{
		app:    app,
		ready:  ready,
		onQuit: onQuit,
	}

	d.header = newBoxedTextView("Sensors")
	d.statsView = newBoxedTextView("Ingest")
	d.faulty = newBoxedTextView("Faulty Devices")
	d.faulty.SetScrollable(true)
	d.healthy = newBoxedTextView("Healthy Devices (count desc)")
	d.healthy.SetScrollable(true)
	d.recent = newBoxedTextView("Recent Records")
	d.recent.SetScrollable(true)
	d.events = newBoxedTextView("System Log")
	d.events.SetMaxLines(maxEventLines)
	d.events.SetScrollable(true)
	// tview's documented cross-goroutine write pattern: TextView.Write is
	// concurrency-safe, the changed func triggers a redraw.
	d.events.SetChangedFunc(func() { app.Draw() })

	body := tview.NewFlex().
		AddItem(d.faulty, 0, 1, false).
		AddItem(d.healthy, 0, 1, false).
		AddItem(d.recent, 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 3, 0, false).
		AddItem(d.statsView, 6, 0, false).
		AddItem(body, 0, 2, false).
		AddItem(d.events, 0, 1, false).
		AddItem(buildFooter(), 1, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC || event.Rune() == 'q' || event.Rune() == 'Q' {
			d.quit()
			return nil
		}
		return event
	})
	app.SetRoot(root, true)

	go func() {
		if err := app.Run(); err != nil {
			log.Printf("UI: tview error: %v", err)
		}
	}()

	return d
}

// WaitReady blocks until the first frame has been drawn.
func (d *Dashboard) WaitReady() {
	if d == nil || d.ready == nil {
		return
	}
	<-d.ready
}

// Stop shuts the application down. Safe to call more than once.
func (d *Dashboard) Stop() {
	if d == nil {
		return
	}
	d.stop.Do(func() {
		if d.app != nil {
			d.app.Stop()
		}
	})
}

func (d *Dashboard) quit() {
	if d.onQuit != nil {
		d.onQuit()
	}
	d.Stop()
}

// SetStats replaces the ingest pane with the given snapshot lines.
func (d *Dashboard) SetStats(lines []string) {
	if d == nil {
		return
	}
	text := strings.Join(lines, "\n")
	d.app.QueueUpdateDraw(func() {
		d.statsView.SetText(text)
	})
}

// SetSummary redraws the device panes from an aggregation summary.
func (d *Dashboard) SetSummary(s aggregate.Summary) {
	if d == nil {
		return
	}
	header := headerLine(s)
	faultyText := faultyLines(s.Faulty)
	healthyText := healthyLines(s.Healthy)
	d.app.QueueUpdateDraw(func() {
		d.header.SetText(header)
		d.faulty.SetText(faultyText)
		d.healthy.SetText(healthyText)
	})
}

// SetRecent redraws the recent-records pane, newest first.
func (d *Dashboard) SetRecent(records []record.Record) {
	if d == nil {
		return
	}
	text := recentLines(records)
	d.app.QueueUpdateDraw(func() {
		d.recent.SetText(text)
	})
}

// SystemWriter returns the sink the log fanout mirrors console output to.
func (d *Dashboard) SystemWriter() io.Writer {
	if d == nil {
		return io.Discard
	}
	return d.events
}

func headerLine(s aggregate.Summary) string {
	return fmt.Sprintf("devices %d   healthy %d   faulty %d",
		s.TotalDevices, s.HealthyCount, s.FaultyCount)
}

func faultyLines(faults []aggregate.SensorFault) string {
	var b strings.Builder
	for _, f := range faults {
		fmt.Fprintf(&b, "%s: %s\n", f.SensorID, f.Reason)
	}
	return b.String()
}

func healthyLines(healthy []aggregate.SensorHealth) string {
	sorted := make([]aggregate.SensorHealth, len(healthy))
	copy(sorted, healthy)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	var b strings.Builder
	for _, h := range sorted {
		fmt.Fprintf(&b, "%s: %d\n", h.SensorID, h.Count)
	}
	return b.String()
}

func recentLines(records []record.Record) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s %s sp1=%s sp2=%s\n", r.SensorID, r.State, r.SP1, r.SP2)
	}
	return b.String()
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

func buildFooter() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetText(
		accentText("Q") + "Quit  " + accentText("Ctrl-C") + "Quit",
	)
}

func accentText(s string) string {
	return accentTag + s + accentReset
}
