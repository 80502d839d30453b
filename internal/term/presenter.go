// Package term renders a diff session in a terminal using tcell: the
// original content on the left, the live streaming document on the
// right, with pending and active-line overlays.
package term

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/diffstream/internal/decoration"
	"github.com/dshills/diffstream/internal/event"
	"github.com/dshills/diffstream/internal/view"
)

// Pane styles.
var (
	styleDefault = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Bold(true).Reverse(true)
	stylePending = tcell.StyleDefault.Dim(true)
	styleActive  = tcell.StyleDefault.Background(tcell.ColorDarkBlue)
	styleGutter  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDivider = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Presenter draws a two-pane diff view on a tcell screen.
type Presenter struct {
	mu     sync.Mutex
	screen tcell.Screen
	bus    *event.Bus
	owned  bool
}

// NewPresenter creates a presenter on a real terminal screen.
func NewPresenter(bus *event.Bus) (*Presenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Presenter{screen: screen, bus: bus, owned: true}, nil
}

// NewPresenterWithScreen creates a presenter on the given screen. The
// caller keeps ownership; Fini will not finalize it.
func NewPresenterWithScreen(screen tcell.Screen, bus *event.Bus) *Presenter {
	return &Presenter{screen: screen, bus: bus}
}

// Init initializes the screen.
func (p *Presenter) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screen.Init()
}

// Fini restores the terminal. Safe to call on a shared screen.
func (p *Presenter) Fini() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.owned {
		p.screen.Fini()
	}
}

// Render draws the diff view and overlay state, then shows the frame.
func (p *Presenter) Render(v *view.View, snap decoration.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.screen.Clear()

	width, height := p.screen.Size()
	if width < 4 || height < 2 {
		p.screen.Show()
		return
	}

	p.drawText(0, 0, width, styleHeader, padRight(" "+v.Title(), width))

	leftWidth := width / 2
	body := height - 1

	before := contentLines(v.BeforeContent())
	after := v.Document().Lines()

	top := v.ScrollTop()
	for row := 0; row < body; row++ {
		line := top + row
		y := row + 1

		if line < len(before) {
			p.drawGutteredLine(0, y, leftWidth-1, line, before[line], styleDefault)
		}

		p.screen.SetContent(leftWidth-1, y, tcell.RuneVLine, nil, styleDivider)

		if line < len(after) {
			style := styleDefault
			switch {
			case snap.IsActive(line):
				style = styleActive
			case snap.IsPending(line):
				style = stylePending
			}
			p.drawGutteredLine(leftWidth, y, width-leftWidth, line, after[line], style)
		}
	}

	p.screen.Show()
}

// Run polls screen events until ctx is done or the user quits with Esc
// or Ctrl+C. Key and mouse activity is published as interaction events
// so focus arbitration can react to it.
func (p *Presenter) Run(ctx context.Context) error {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	go p.screen.ChannelEvents(events, quit)
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch tev := ev.(type) {
			case *tcell.EventKey:
				if tev.Key() == tcell.KeyEscape || tev.Key() == tcell.KeyCtrlC {
					return nil
				}
				p.publishInteraction(event.TopicSelectionChanged)
			case *tcell.EventMouse:
				p.publishInteraction(event.TopicSelectionChanged)
			case *tcell.EventResize:
				p.mu.Lock()
				p.screen.Sync()
				p.mu.Unlock()
			}
		}
	}
}

func (p *Presenter) publishInteraction(topic event.Topic) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(event.Event{Topic: topic})
}

// drawGutteredLine draws a 1-based line number gutter followed by text,
// clipped to maxWidth.
func (p *Presenter) drawGutteredLine(x, y, maxWidth, line int, text string, style tcell.Style) {
	gutter := fmt.Sprintf("%4d ", line+1)
	p.drawText(x, y, min(len(gutter), maxWidth), styleGutter, gutter)
	if maxWidth > len(gutter) {
		p.drawText(x+len(gutter), y, maxWidth-len(gutter), style, text)
	}
}

func (p *Presenter) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			return
		}
		p.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func contentLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
