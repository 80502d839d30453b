package term

import (
	"strconv"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/diffstream/internal/decoration"
	"github.com/dshills/diffstream/internal/document"
	"github.com/dshills/diffstream/internal/event"
	"github.com/dshills/diffstream/internal/view"
)

func newSimPresenter(t *testing.T) (*Presenter, tcell.SimulationScreen) {
	t.Helper()

	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim.Init() error: %v", err)
	}
	sim.SetSize(80, 24)

	p := NewPresenterWithScreen(sim, event.NewBus())
	return p, sim
}

// screenRow reads one row of the simulation screen as a string.
func screenRow(sim tcell.SimulationScreen, y int) string {
	cells, width, _ := sim.GetContents()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		c := cells[y*width+x]
		if len(c.Runes) > 0 {
			sb.WriteRune(c.Runes[0])
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

func TestRenderTwoPaneDiff(t *testing.T) {
	p, sim := newSimPresenter(t)
	defer sim.Fini()

	bus := event.NewBus()
	ws := view.NewWorkspace(bus)
	doc := document.NewDocument("/work/file.txt", []byte("new line\n"))
	v := ws.ShowDiff(view.DiffSpec{
		Title:         "file.txt: Original ↔ Changes",
		BeforeContent: "old line\n",
		Doc:           doc,
	})

	tracker := decoration.NewTracker()
	tracker.SetLineCount(1)

	p.Render(v, tracker.Snapshot())

	header := screenRow(sim, 0)
	if !strings.Contains(header, "file.txt") {
		t.Errorf("header = %q, want the view title", header)
	}

	body := screenRow(sim, 1)
	if !strings.Contains(body, "old line") {
		t.Errorf("row 1 = %q, want left pane content", body)
	}
	if !strings.Contains(body, "new line") {
		t.Errorf("row 1 = %q, want right pane content", body)
	}
}

func TestRenderRespectsScrollTop(t *testing.T) {
	p, sim := newSimPresenter(t)
	defer sim.Fini()

	var lines []string
	for i := 1; i <= 100; i++ {
		lines = append(lines, "xxx-"+strconv.Itoa(i))
	}
	content := strings.Join(lines, "\n") + "\n"

	bus := event.NewBus()
	ws := view.NewWorkspace(bus)
	doc := document.NewDocument("/work/big.txt", []byte(content))
	v := ws.ShowDiff(view.DiffSpec{
		Title:         "big.txt",
		BeforeContent: content,
		Doc:           doc,
	})
	v.SetVisibleLines(23)
	v.ScrollToLine(60, 0)

	p.Render(v, decoration.NewTracker().Snapshot())

	body := screenRow(sim, 1)
	if strings.Contains(body, "xxx-1 ") {
		t.Errorf("row 1 = %q, first line still visible after scrolling", body)
	}
}
