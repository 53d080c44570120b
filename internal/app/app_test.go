package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cmdpalette/internal/config"
	"github.com/dshills/cmdpalette/internal/input/palette"
)

const testPalette = `
[settings]
log_level = "debug"

[[commands]]
id = "tab.new"
name = "New Tab"
keybinding = "ctrl+t"

[[commands.args]]
name = "profile"
default = "pwsh"

[[commands]]
id = "tab.close"
name = "Close Tab"

[[commands]]
id = "tab.next"
name = "Next Tab"
`

func writePalette(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palette.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app
}

// runApp starts Run on a simulation screen and waits until it polls events.
func runApp(t *testing.T, app *Application) <-chan runResult {
	t.Helper()
	done := make(chan runResult, 1)
	go func() {
		id, err := app.Run()
		done <- runResult{id, err}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for app.activeScreen() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Run did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return done
}

type runResult struct {
	id  string
	err error
}

func waitRun(t *testing.T, done <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return runResult{}
	}
}

func postKeys(screen tcell.Screen, keys ...*tcell.EventKey) {
	for _, k := range keys {
		_ = screen.PostEvent(k)
	}
}

func runeKeys(text string) []*tcell.EventKey {
	keys := make([]*tcell.EventKey, 0, len(text))
	for _, r := range text {
		keys = append(keys, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	return keys
}

func TestNew_NoConfig(t *testing.T) {
	app := newTestApp(t, Options{})

	if n := app.Palette().Count(); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
	if app.Settings() != config.DefaultSettings() {
		t.Errorf("Settings() = %+v, want defaults", app.Settings())
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true before Run")
	}
}

func TestNew_NoConfigEnvOverrides(t *testing.T) {
	t.Setenv("CMDPALETTE_LOG_LEVEL", "debug")
	t.Setenv("CMDPALETTE_THEME_PROMPT", "#010203")

	app := newTestApp(t, Options{})
	if app.Logger().Level() != LogLevelDebug {
		t.Errorf("log level = %v, want DEBUG from the environment", app.Logger().Level())
	}
	if got := app.Settings().Theme.Prompt; got != "#010203" {
		t.Errorf("Theme.Prompt = %q, want #010203", got)
	}

	t.Setenv("CMDPALETTE_THEME_MATCH", "red")
	if _, err := New(Options{LogOutput: &bytes.Buffer{}}); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New with bad theme color: error = %v, want ErrValidationFailed", err)
	}
}

func TestNew_LoadsConfig(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, Options{ConfigPath: writePalette(t, testPalette), LogOutput: &logs})

	if n := app.Palette().Count(); n != 3 {
		t.Fatalf("Count() = %d, want 3", n)
	}
	if cmd := app.Palette().Get("tab.new"); cmd == nil || cmd.Keybinding != "ctrl+t" {
		t.Errorf("Get(tab.new) = %+v", cmd)
	}
	if !strings.Contains(logs.String(), "loaded 3 commands") {
		t.Errorf("logs = %q, want load message", logs.String())
	}
	if app.Logger().Level() != LogLevelDebug {
		t.Errorf("log level = %v, want DEBUG from the palette file", app.Logger().Level())
	}
}

func TestNew_LogLevelOverride(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, Options{
		ConfigPath: writePalette(t, testPalette),
		LogLevel:   "error",
		LogOutput:  &logs,
	})

	if app.Logger().Level() != LogLevelError {
		t.Errorf("log level = %v, want ERROR", app.Logger().Level())
	}
	if logs.Len() != 0 {
		t.Errorf("logs = %q, want nothing at error level", logs.String())
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.toml") }, config.ErrFileNotFound},
		{"invalid file", func(t *testing.T) string { return writePalette(t, "[[commands]\n") }, nil},
		{"invalid color", func(t *testing.T) string {
			return writePalette(t, "[settings.theme]\nmatch = \"#zzzzzz\"\n")
		}, config.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{ConfigPath: tt.path(t), LogOutput: &bytes.Buffer{}})
			if err == nil {
				t.Fatal("expected error")
			}

			var cerr *ComponentError
			if !errors.As(err, &cerr) || cerr.Component != "config" {
				t.Errorf("error = %v, want config ComponentError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	app := newTestApp(t, Options{ConfigPath: writePalette(t, testPalette)})

	var out bytes.Buffer
	if err := app.RunOnce("tab", &out); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	want := "Close Tab\ttab.close\nNew Tab\ttab.new\tctrl+t\nNext Tab\ttab.next\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunOnce_LimitAndColor(t *testing.T) {
	app := newTestApp(t, Options{ConfigPath: writePalette(t, testPalette), Limit: 1, Color: true})

	var out bytes.Buffer
	if err := app.RunOnce("nt", &out); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want 1", lines)
	}
	if !strings.Contains(lines[0], "\x1b[") || !strings.HasSuffix(lines[0], "tab.new\tctrl+t") {
		t.Errorf("line = %q, want highlighted New Tab", lines[0])
	}
}

func TestRun_Accept(t *testing.T) {
	var mu sync.Mutex
	var executed []string
	var gotArgs map[string]any

	screen := tcell.NewSimulationScreen("UTF-8")
	app := newTestApp(t, Options{
		ConfigPath: writePalette(t, testPalette),
		Screen:     screen,
		Handler: func(id string) palette.CommandHandler {
			return func(args map[string]any) error {
				mu.Lock()
				executed = append(executed, id)
				gotArgs = args
				mu.Unlock()
				return nil
			}
		},
	})

	done := runApp(t, app)
	postKeys(screen, runeKeys("tab")...)
	postKeys(screen, tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	r := waitRun(t, done)
	if r.err != nil {
		t.Fatalf("Run: %v", r.err)
	}
	if r.id != "tab.new" {
		t.Errorf("Run() = %q, want tab.new", r.id)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(executed) != 1 || executed[0] != "tab.new" {
		t.Errorf("executed = %v, want [tab.new]", executed)
	}
	if gotArgs["profile"] != "pwsh" {
		t.Errorf("handler args = %v, want profile default", gotArgs)
	}
	if recent := app.Palette().RecentCommands(1); len(recent) != 1 || recent[0] != "tab.new" {
		t.Errorf("RecentCommands() = %v, want [tab.new]", recent)
	}
}

func TestRun_Cancel(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	app := newTestApp(t, Options{ConfigPath: writePalette(t, testPalette), Screen: screen})

	done := runApp(t, app)
	postKeys(screen, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))

	r := waitRun(t, done)
	if !errors.Is(r.err, ErrCanceled) {
		t.Errorf("Run() error = %v, want ErrCanceled", r.err)
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true after Run returned")
	}
}

func TestRun_HandlerError(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	app := newTestApp(t, Options{
		ConfigPath: writePalette(t, testPalette),
		Screen:     screen,
		Handler: func(string) palette.CommandHandler {
			return func(map[string]any) error { panic("boom") }
		},
	})

	done := runApp(t, app)
	postKeys(screen, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	r := waitRun(t, done)
	var perr *RecoveredPanicError
	if !errors.As(r.err, &perr) {
		t.Fatalf("Run() error = %v, want *RecoveredPanicError", r.err)
	}
	if r.id != "tab.close" || perr.CommandID != "tab.close" {
		t.Errorf("Run() = %q, %+v, want tab.close", r.id, perr)
	}
	if n := app.Palette().History().Len(); n != 0 {
		t.Errorf("history length = %d, want 0 after failure", n)
	}
}

func TestRun_Shutdown(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	app := newTestApp(t, Options{Screen: screen})

	done := runApp(t, app)
	if _, err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}

	app.Shutdown()
	r := waitRun(t, done)
	if !errors.Is(r.err, ErrQuit) {
		t.Errorf("Run() error = %v, want ErrQuit", r.err)
	}

	// Shutdown is idempotent.
	app.Shutdown()
}

func TestReload(t *testing.T) {
	path := writePalette(t, testPalette)
	app := newTestApp(t, Options{ConfigPath: path})

	app.Palette().SetFilter("tab")
	updated := testPalette + "\n[[commands]]\nid = \"tab.prev\"\nname = \"Prev Tab\"\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := app.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if n := app.Palette().Count(); n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
	if f := app.Palette().Filter(); f != "tab" {
		t.Errorf("Filter() = %q, want tab kept", f)
	}
	if n := len(app.Palette().Visible(0)); n != 4 {
		t.Errorf("len(Visible()) = %d, want 4", n)
	}

	// A broken file keeps the previous commands.
	if err := os.WriteFile(path, []byte("[[commands"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := app.Reload(); err == nil {
		t.Error("Reload of a broken file succeeded")
	}
	if n := app.Palette().Count(); n != 4 {
		t.Errorf("Count() = %d after failed reload, want 4", n)
	}
}

func TestWatchReloads(t *testing.T) {
	path := writePalette(t, testPalette)
	app := newTestApp(t, Options{ConfigPath: path, Watch: true})

	updated := testPalette + "\n[[commands]]\nid = \"tab.prev\"\nname = \"Prev Tab\"\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for app.Palette().Count() != 4 {
		if time.Now().After(deadline) {
			t.Fatalf("Count() = %d, want 4 after file change", app.Palette().Count())
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !app.Palette().Has("tab.prev") {
		t.Error("reloaded palette is missing tab.prev")
	}
}
