package app

import "github.com/gdamore/tcell/v2"

// activeScreen returns the screen of a running Run.
func (app *Application) activeScreen() tcell.Screen {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.screen
}
