package palette

import (
	"errors"
	"testing"
)

func TestCommandExecution(t *testing.T) {
	executed := false

	cmd := &Command{
		ID:   "test.cmd",
		Name: "Test Command",
		Handler: func(args map[string]any) error {
			executed = true
			return nil
		},
	}

	err := cmd.Execute(nil)
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("handler was not executed")
	}
}

func TestCommandHandlerError(t *testing.T) {
	p := New()

	expectedErr := errors.New("handler error")
	p.Register(&Command{
		ID:   "test.err",
		Name: "Error",
		Handler: func(args map[string]any) error {
			return expectedErr
		},
	})

	err := p.Execute("test.err", nil)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid", Command{ID: "tab.new", Name: "New Tab"}, false},
		{"empty id", Command{Name: "New Tab"}, true},
		{"empty name", Command{ID: "tab.new"}, true},
		{"blank name", Command{ID: "tab.new", Name: "   "}, true},
		{"valid args", Command{ID: "pane.split", Name: "Split Pane", Args: []Arg{
			{Name: "split", Kind: ArgEnum, Options: []string{"up", "down"}, Default: "down"},
		}}, false},
		{"bad arg default", Command{ID: "pane.split", Name: "Split Pane", Args: []Arg{
			{Name: "size", Kind: ArgNumber, Default: "half"},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIDFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"New Tab", "new.tab"},
		{"[ | ] Split Vertical", "split.vertical"},
		{"[-] Split Horizontal", "split.horizontal"},
		{"Open Settings (JSON)", "open.settings.json"},
		{"Schließen", "schließen"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := IDFromName(tt.name); got != tt.want {
			t.Errorf("IDFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
