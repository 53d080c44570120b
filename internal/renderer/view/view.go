package view

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/cmdpalette/internal/input/fuzzy"
	"github.com/dshills/cmdpalette/internal/input/palette"
)

const (
	promptMarker = "> "
	ellipsis     = "…"
)

// Model is the palette state the view displays.
type Model interface {
	SetFilter(filter string) uint64
	SetFilterAsync(ctx context.Context, filter string, done func(rev uint64, visible []palette.SearchResult)) uint64
	Visible(limit int) []palette.SearchResult
	Count() int
}

// Action is the outcome of handling an event.
type Action int

const (
	// ActionNone means the palette stays open.
	ActionNone Action = iota
	// ActionAccept means the selected command was chosen.
	ActionAccept
	// ActionCancel means the palette was dismissed.
	ActionCancel
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAccept:
		return "accept"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Options configures a View.
type Options struct {
	// Theme holds the colors.
	Theme Theme

	// AsyncThreshold is the command count from which filtering runs in
	// the background. Zero always filters synchronously.
	AsyncThreshold int
}

// refreshEvent is posted when a background ranking finished.
type refreshEvent struct {
	rev uint64
}

// View renders a palette onto a tcell screen.
// Its methods must be called from the event loop goroutine.
type View struct {
	screen tcell.Screen
	model  Model
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	filter   []rune
	items    []palette.SearchResult
	selected int
	offset   int

	// pending is the revision of the background ranking in flight, or 0.
	pending uint64
}

// New creates a view with an empty filter. The initial ranking is
// synchronous so the first frame is never empty.
func New(screen tcell.Screen, model Model, opts Options) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		screen: screen,
		model:  model,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	v.model.SetFilter("")
	v.Refresh()
	return v
}

// Close cancels a background ranking in progress.
func (v *View) Close() {
	v.cancel()
}

// Filter returns the current filter text.
func (v *View) Filter() string {
	return string(v.filter)
}

// Items returns the displayed commands.
func (v *View) Items() []palette.SearchResult {
	return v.items
}

// SelectedIndex returns the index of the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Selected returns the selected command, if any.
func (v *View) Selected() (*palette.Command, bool) {
	if v.selected < 0 || v.selected >= len(v.items) {
		return nil, false
	}
	return v.items[v.selected].Command, true
}

// Pending reports whether a background ranking is outstanding.
func (v *View) Pending() bool {
	return v.pending != 0
}

// SetFilter replaces the filter text and ranks the commands again.
// The selection moves to the first row.
func (v *View) SetFilter(filter string) {
	v.filter = []rune(filter)
	v.selected = 0
	v.offset = 0

	if v.opts.AsyncThreshold > 0 && v.model.Count() >= v.opts.AsyncThreshold {
		v.pending = v.model.SetFilterAsync(v.ctx, filter, v.asyncDone)
		return
	}

	v.pending = 0
	v.model.SetFilter(filter)
	v.Refresh()
}

// asyncDone runs on a ranking goroutine.
func (v *View) asyncDone(rev uint64, _ []palette.SearchResult) {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(refreshEvent{rev: rev}))
}

// Refresh reloads the visible commands from the model, keeping the
// selection in range.
func (v *View) Refresh() {
	v.items = v.model.Visible(0)
	v.clampSelection()
}

// HandleEvent applies an event and reports whether the palette is done.
func (v *View) HandleEvent(ev tcell.Event) Action {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(e)

	case *tcell.EventResize:
		v.screen.Sync()
		v.clampSelection()

	case *tcell.EventInterrupt:
		switch data := e.Data().(type) {
		case refreshEvent:
			if data.rev == v.pending {
				v.pending = 0
			}
			v.Refresh()
		default:
			// Posted by the owner after the command list changed.
			v.Refresh()
		}
	}
	return ActionNone
}

func (v *View) handleKey(e *tcell.EventKey) Action {
	switch e.Key() {
	case tcell.KeyRune:
		v.SetFilter(string(append(v.filter, e.Rune())))

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.filter) > 0 {
			v.SetFilter(string(v.filter[:len(v.filter)-1]))
		}

	case tcell.KeyCtrlU:
		if len(v.filter) > 0 {
			v.SetFilter("")
		}

	case tcell.KeyUp, tcell.KeyCtrlP:
		v.move(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		v.move(1)
	case tcell.KeyPgUp:
		v.move(-v.listHeight())
	case tcell.KeyPgDn:
		v.move(v.listHeight())
	case tcell.KeyHome:
		v.move(-len(v.items))
	case tcell.KeyEnd:
		v.move(len(v.items))

	case tcell.KeyEnter:
		if _, ok := v.Selected(); ok {
			return ActionAccept
		}

	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionCancel
	}
	return ActionNone
}

func (v *View) move(delta int) {
	v.selected += delta
	v.clampSelection()
}

func (v *View) clampSelection() {
	if v.selected >= len(v.items) {
		v.selected = len(v.items) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}

	height := v.listHeight()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if height > 0 && v.selected >= v.offset+height {
		v.offset = v.selected - height + 1
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

// listHeight is the number of rows below the prompt.
func (v *View) listHeight() int {
	_, h := v.screen.Size()
	if h <= 1 {
		return 0
	}
	return h - 1
}

// Draw renders the prompt and the visible rows and shows the screen.
func (v *View) Draw() {
	v.screen.Clear()
	width, _ := v.screen.Size()
	theme := v.opts.Theme

	x, _ := v.drawText(0, 0, width, promptMarker, theme.promptStyle())
	cursor, _ := v.drawText(x, 0, width, string(v.filter), theme.textStyle(false))

	counter := fmt.Sprintf("%d/%d", len(v.items), v.model.Count())
	if cw := uniseg.StringWidth(counter); cursor+cw+1 < width {
		v.drawText(width-cw, 0, width, counter, theme.dimStyle(false))
	}
	if cursor < width {
		v.screen.ShowCursor(cursor, 0)
	} else {
		v.screen.HideCursor()
	}

	height := v.listHeight()
	for row := 0; row < height && v.offset+row < len(v.items); row++ {
		i := v.offset + row
		v.drawRow(row+1, width, v.items[i], i == v.selected)
	}

	v.screen.Show()
}

// drawRow renders one command: a selection marker, the highlighted name,
// and the keybinding right aligned.
func (v *View) drawRow(y, width int, item palette.SearchResult, selected bool) {
	theme := v.opts.Theme
	base := theme.textStyle(selected)
	if selected {
		for x := 0; x < width; x++ {
			v.screen.SetContent(x, y, ' ', nil, base)
		}
		v.screen.SetContent(0, y, '>', nil, theme.promptStyle().Background(theme.Selected))
	}

	limit := width - 1
	if kb := item.Command.Keybinding; kb != "" {
		kbWidth := uniseg.StringWidth(kb)
		if start := width - 1 - kbWidth; start > 3 {
			v.drawText(start, y, width-1, kb, theme.dimStyle(selected))
			limit = start - 2
		}
	}

	segments := item.Segments
	if len(segments) == 0 {
		segments = fuzzy.Segmentation{{Text: item.Command.Name}}
	}
	v.drawSegments(2, y, limit, segments, selected)
}

// drawSegments draws the segments between x and limit, truncating with an
// ellipsis when they do not fit.
func (v *View) drawSegments(x, y, limit int, segments fuzzy.Segmentation, selected bool) {
	if x >= limit {
		return
	}
	theme := v.opts.Theme

	if uniseg.StringWidth(segments.Text()) > limit-x {
		ellipsisWidth := uniseg.StringWidth(ellipsis)
		for _, seg := range segments {
			var complete bool
			x, complete = v.drawText(x, y, limit-ellipsisWidth, seg.Text, segmentStyle(theme, seg, selected))
			if !complete {
				break
			}
		}
		v.drawText(x, y, limit, ellipsis, theme.textStyle(selected))
		return
	}

	for _, seg := range segments {
		x, _ = v.drawText(x, y, limit, seg.Text, segmentStyle(theme, seg, selected))
	}
}

func segmentStyle(theme Theme, seg fuzzy.Segment, selected bool) tcell.Style {
	if seg.IsMatch {
		return theme.matchStyle(selected)
	}
	return theme.textStyle(selected)
}

// drawText draws text from x, one grapheme cluster per cell run, stopping
// before a cluster that would cross limit. It returns the next column and
// whether all of text was drawn.
func (v *View) drawText(x, y, limit int, text string, style tcell.Style) (int, bool) {
	state := -1
	for len(text) > 0 {
		var cluster string
		var width int
		cluster, text, width, state = uniseg.FirstGraphemeClusterInString(text, state)
		if width == 0 {
			continue
		}
		if x+width > limit {
			return x, false
		}
		runes := []rune(cluster)
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
	return x, true
}
