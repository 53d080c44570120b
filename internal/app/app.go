// Package app wires the palette, its configuration and the terminal view
// together and runs them.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdpalette/internal/config"
	"github.com/dshills/cmdpalette/internal/config/loader"
	"github.com/dshills/cmdpalette/internal/config/watcher"
	"github.com/dshills/cmdpalette/internal/input/palette"
	"github.com/dshills/cmdpalette/internal/renderer/view"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the palette file. Empty starts with no commands.
	ConfigPath string

	// Watch reloads the command list when the palette file changes.
	Watch bool

	// LogLevel overrides the level from the palette file.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Limit caps the number of printed results (0 means all).
	Limit int

	// Color enables ANSI highlighting in printed results.
	Color bool

	// Screen is the terminal to run on. Nil creates one from the
	// environment when Run is called.
	Screen tcell.Screen

	// Handler returns the handler of a command. Nil handlers only record
	// the command in the history.
	Handler func(id string) palette.CommandHandler
}

// quitEvent is posted to the screen by Shutdown.
type quitEvent struct{}

// Application owns the palette and the components around it.
type Application struct {
	mu sync.RWMutex

	opts    Options
	logger  *Logger
	loader  *loader.Loader
	file    *config.File
	theme   view.Theme
	palette *palette.Palette
	watcher *watcher.Watcher
	screen  tcell.Screen

	ctx      context.Context
	cancel   context.CancelFunc
	running  atomic.Bool
	shutdown sync.Once
}

// New loads the palette file and builds the palette. With Watch set the
// palette file is watched for changes.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		loader: loader.New(),
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	load := app.loader.LoadDefault
	if opts.ConfigPath != "" {
		load = func() (*config.File, error) { return app.loader.Load(opts.ConfigPath) }
	}
	file, err := load()
	if err != nil {
		app.cancel()
		return nil, NewComponentError("config", "load", err)
	}
	app.file = file

	level := file.Settings.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: opts.LogOutput,
		Prefix: "cmdpalette",
	})

	theme, err := view.NewTheme(file.Settings.Theme)
	if err != nil {
		app.cancel()
		return nil, NewComponentError("config", "theme", err)
	}
	app.theme = theme

	app.palette = palette.NewWithOptions(file.Settings.PaletteOptions())
	if err := app.palette.Replace(file.PaletteCommands(app.handlerFor)); err != nil {
		app.cancel()
		return nil, NewComponentError("palette", "register", err)
	}
	app.palette.OnChange(func() {
		app.Logger().WithComponent("palette").Debug("command list changed, %d commands", app.palette.Count())
	})
	app.Logger().Info("loaded %d commands from %q", app.palette.Count(), opts.ConfigPath)

	if opts.Watch {
		if err := app.startWatcher(); err != nil {
			app.cancel()
			return nil, err
		}
	}

	return app, nil
}

func (app *Application) startWatcher() error {
	if app.opts.ConfigPath == "" {
		app.Logger().Warn("watch requested without a palette file")
		return nil
	}

	log := app.Logger().WithComponent("watcher")
	w, err := watcher.New(app.opts.ConfigPath, watcher.WithErrorHandler(func(err error) {
		log.Error("file system: %v", err)
	}))
	if err != nil {
		return NewComponentError("watcher", "create", err)
	}
	w.OnChange(app.onConfigEvent)
	if err := w.Start(app.ctx); err != nil {
		_ = w.Close()
		return NewComponentError("watcher", "start", err)
	}

	app.watcher = w
	log.Debug("watching %s", w.Path())
	return nil
}

func (app *Application) onConfigEvent(e watcher.Event) {
	log := app.Logger().WithComponent("watcher").WithField("op", e.Op)
	switch e.Op {
	case watcher.OpRemove, watcher.OpRename:
		log.Warn("palette file %s went away, keeping %d commands", e.Path, app.palette.Count())
	default:
		if err := app.Reload(); err != nil {
			app.logComponentError("watcher", err)
		}
	}
}

// Reload reads the palette file again and replaces the command list. The
// current filter and the history are kept. Settings other than commands
// apply on the next start.
func (app *Application) Reload() error {
	if app.opts.ConfigPath == "" {
		return nil
	}

	file, err := app.loader.Load(app.opts.ConfigPath)
	if err != nil {
		return NewComponentError("config", "reload", err)
	}
	if err := app.palette.Replace(file.PaletteCommands(app.handlerFor)); err != nil {
		return NewComponentError("palette", "reload", err)
	}

	app.mu.Lock()
	app.file = file
	screen := app.screen
	app.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
	app.Logger().Info("reloaded %d commands from %s", app.palette.Count(), app.opts.ConfigPath)
	return nil
}

// handlerFor wraps the configured handler of a command. A panicking
// handler is reported as a *RecoveredPanicError.
func (app *Application) handlerFor(id string) palette.CommandHandler {
	var h palette.CommandHandler
	if app.opts.Handler != nil {
		h = app.opts.Handler(id)
	}
	return func(args map[string]any) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &RecoveredPanicError{CommandID: id, Value: r}
			}
		}()

		app.Logger().WithField("args", args).Debug("executing %s", id)
		if h == nil {
			return nil
		}
		return h(args)
	}
}

// Palette returns the palette.
func (app *Application) Palette() *palette.Palette {
	return app.palette
}

// Settings returns the settings of the loaded palette file.
func (app *Application) Settings() config.Settings {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.file.Settings
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// RunOnce prints the commands matching filter to w, best first.
func (app *Application) RunOnce(filter string, w io.Writer) error {
	results := app.palette.Search(filter, app.opts.Limit)
	app.Logger().Debug("filter %q matched %d commands", filter, len(results))

	p := view.Printer{Theme: app.theme, ANSI: app.opts.Color}
	if err := p.Print(w, results); err != nil {
		return NewComponentError("output", "print", err)
	}
	return nil
}

// Run shows the palette until a command is accepted or the palette is
// dismissed. The accepted command is executed and its ID returned.
// Dismissing returns ErrCanceled; Shutdown makes Run return ErrQuit.
func (app *Application) Run() (string, error) {
	if !app.running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}
	defer app.running.Store(false)

	screen := app.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return "", NewComponentError("screen", "create", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return "", NewComponentError("screen", "init", err)
	}
	defer screen.Fini()

	app.mu.Lock()
	app.screen = screen
	app.mu.Unlock()
	defer func() {
		app.mu.Lock()
		app.screen = nil
		app.mu.Unlock()
	}()

	// Shutdown may have run before the screen was published.
	if app.ctx.Err() != nil {
		return "", ErrQuit
	}

	v := view.New(screen, app.palette, view.Options{
		Theme:          app.theme,
		AsyncThreshold: app.Settings().AsyncThreshold,
	})
	defer v.Close()

	for {
		v.Draw()

		ev := screen.PollEvent()
		if ev == nil {
			return "", ErrQuit
		}
		if intr, ok := ev.(*tcell.EventInterrupt); ok {
			if _, quit := intr.Data().(quitEvent); quit {
				return "", ErrQuit
			}
		}

		switch v.HandleEvent(ev) {
		case view.ActionAccept:
			cmd, ok := v.Selected()
			if !ok {
				return "", ErrNoSelection
			}
			if err := app.palette.Execute(cmd.ID, nil); err != nil {
				return cmd.ID, fmt.Errorf("executing %s: %w", cmd.ID, err)
			}
			app.Logger().Info("accepted %s", cmd.ID)
			return cmd.ID, nil

		case view.ActionCancel:
			return "", ErrCanceled
		}
	}
}

// Shutdown stops the watcher and makes a running Run return ErrQuit.
// It is safe to call more than once.
func (app *Application) Shutdown() {
	app.shutdown.Do(func() {
		app.cancel()
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.logComponentError("watcher", err)
			}
		}
	})

	app.mu.RLock()
	screen := app.screen
	app.mu.RUnlock()
	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
	}
}
