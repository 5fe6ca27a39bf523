package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/lasertank/game/engine"
	"github.com/wricardo/lasertank/logger"
)

// clearScreen is the ANSI sequence that clears the terminal and homes the cursor.
const clearScreen = "\033[H\033[2J"

// Prompt is the command menu shown before every read.
const Prompt = `Command menu
  w: move up
  s: move down
  a: move left
  d: move right
  f: fire
  l: save log
  q: quit
> `

// Printer writes each grid it is shown to an io.Writer. It implements
// engine.Display.
type Printer struct {
	w     io.Writer
	clear bool
}

// NewPrinter returns a Printer. When clear is set every grid is preceded by
// the clear-screen sequence.
func NewPrinter(w io.Writer, clear bool) *Printer {
	return &Printer{w: w, clear: clear}
}

// Show prints g with its '*' border.
func (p *Printer) Show(g *engine.Grid) {
	if p.clear {
		io.WriteString(p.w, clearScreen)
	}
	if _, err := g.WriteTo(p.w); err != nil {
		logger.Log.WithError(err).Warn("failed to print grid")
	}
}

// Message prints a line of text.
func (p *Printer) Message(msg string) {
	fmt.Fprintln(p.w, msg)
}

// Reader reads one command per line. It implements engine.CommandSource.
type Reader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewReader reads commands from r and writes the menu and rejections to out.
func NewReader(r io.Reader, out io.Writer) *Reader {
	return &Reader{scanner: bufio.NewScanner(r), out: out}
}

// NextCommand shows the menu and reads lines until one holds a valid command.
// "q", "quit" and end of input return engine.ErrQuit.
func (r *Reader) NextCommand() (engine.Command, error) {
	for {
		io.WriteString(r.out, Prompt)
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, fmt.Errorf("failed to read command: %w", err)
			}
			return 0, engine.ErrQuit
		}

		line := strings.TrimSpace(r.scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return 0, engine.ErrQuit
		}

		cmd, err := engine.ParseCommand(line)
		if errors.Is(err, engine.ErrUnknownCommand) {
			fmt.Fprintf(r.out, "Invalid command %q\n", line)
			continue
		}
		return cmd, err
	}
}
