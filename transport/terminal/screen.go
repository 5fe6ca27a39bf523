package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/lasertank/game/engine"
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleTank    = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleMirror  = styleDefault.Foreground(tcell.ColorAqua)
	styleBeam    = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = styleDefault.Foreground(tcell.ColorYellow)
	styleMenu    = styleDefault.Foreground(tcell.ColorGray)
)

const menu = "w:up  s:down  a:left  d:right  f:fire  l:save  q:quit"

// Screen draws the grid on a terminal and reads commands from its keyboard.
// It implements engine.Display and engine.CommandSource.
type Screen struct {
	screen tcell.Screen
	status string
	last   *engine.Grid
}

// Open initialises the real terminal.
func Open() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise screen: %w", err)
	}
	return New(s), nil
}

// New wraps an initialised tcell screen.
func New(s tcell.Screen) *Screen {
	s.SetStyle(styleDefault)
	s.Clear()
	return &Screen{screen: s}
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.Fini()
}

// SetStatus sets the line shown under the grid and redraws.
func (s *Screen) SetStatus(msg string) {
	s.status = msg
	if s.last != nil {
		s.draw(s.last)
	}
}

// Show draws g with a '*' border. Beam cells are highlighted.
func (s *Screen) Show(g *engine.Grid) {
	s.last = g.Snapshot()
	s.draw(s.last)
}

func (s *Screen) draw(g *engine.Grid) {
	s.screen.Clear()

	h, w := g.Height(), g.Width()
	for x := 0; x < w+2; x++ {
		s.screen.SetContent(x, 0, '*', nil, styleBorder)
		s.screen.SetContent(x, h+1, '*', nil, styleBorder)
	}
	for r := 0; r < h; r++ {
		s.screen.SetContent(0, r+1, '*', nil, styleBorder)
		s.screen.SetContent(w+1, r+1, '*', nil, styleBorder)
		for c := 0; c < w; c++ {
			cell := g.At(engine.Position{Row: r, Col: c})
			s.screen.SetContent(c+1, r+1, rune(cell), nil, cellStyle(cell))
		}
	}

	s.drawText(0, h+3, menu, styleMenu)
	if s.status != "" {
		s.drawText(0, h+4, s.status, styleStatus)
	}
	s.screen.Show()
}

func cellStyle(c engine.Cell) tcell.Style {
	switch engine.Classify(c) {
	case engine.ClassEntity:
		return styleTank
	case engine.ClassMirror:
		return styleMirror
	case engine.ClassBeam:
		return styleBeam
	}
	return styleDefault
}

func (s *Screen) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		s.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// NextCommand blocks until a command key is pressed. Escape, q and Ctrl-C
// return engine.ErrQuit; other keys are ignored.
func (s *Screen) NextCommand() (engine.Command, error) {
	for {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return 0, engine.ErrQuit
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if cmd, ok, quit := keyCommand(ev); quit {
				return 0, engine.ErrQuit
			} else if ok {
				return cmd, nil
			}
		}
	}
}

// keyCommand maps a key press to a command.
func keyCommand(ev *tcell.EventKey) (cmd engine.Command, ok bool, quit bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return 0, false, true
	case tcell.KeyUp:
		return engine.CommandUp, true, false
	case tcell.KeyDown:
		return engine.CommandDown, true, false
	case tcell.KeyLeft:
		return engine.CommandLeft, true, false
	case tcell.KeyRight:
		return engine.CommandRight, true, false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return 0, false, true
		case ' ':
			return engine.CommandFire, true, false
		}
		c, err := engine.ParseCommand(string(ev.Rune()))
		if err != nil {
			return 0, false, false
		}
		return c, true, false
	}
	return 0, false, false
}

// WaitKey blocks until any key is pressed.
func (s *Screen) WaitKey() {
	for {
		switch s.screen.PollEvent().(type) {
		case nil, *tcell.EventKey:
			return
		}
	}
}
