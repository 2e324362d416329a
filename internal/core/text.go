package core

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chess10kp/powerwidget/internal/host/text"
)

const textHelp = "keys: <n> click, l<n> long click, t toggle, < > scroll, q quit"

// runText draws the widget in the terminal and reads key commands from in,
// one per line, until q, end of input or Quit.
func (a *App) runText(in io.Reader, out io.Writer) error {
	host := text.New(text.Options{
		Out:             out,
		OnColor:         a.config.Styling.OnColor,
		OffColor:        a.config.Styling.OffColor,
		TransitionColor: a.config.Styling.TransitionColor,
		RedrawDelay:     16 * time.Millisecond,
	})

	done := make(chan struct{})
	var once sync.Once
	a.setStopHost(func() {
		once.Do(func() { close(done) })
	})

	if err := a.start(host, host); err != nil {
		return err
	}
	fmt.Fprintln(out, textHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case line, ok := <-lines:
			if !ok || !a.textCommand(host, line) {
				a.Quit()
				return nil
			}
		}
	}
}

// textCommand applies one key command and reports whether to keep going
func (a *App) textCommand(host *text.Host, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case "q":
		return false
	case "t":
		a.ToggleVisibility()
		return true
	case "<":
		host.Scroll(-1)
		return true
	case ">":
		host.Scroll(1)
		return true
	}

	long := strings.HasPrefix(line, "l")
	n, err := strconv.Atoi(strings.TrimPrefix(line, "l"))
	if err != nil || n < 1 {
		log.Printf("[TEXT] Unknown key command %q (%s)", line, textHelp)
		return true
	}
	if err := host.Press(n-1, long); err != nil {
		log.Printf("[TEXT] Press %d failed: %v", n, err)
	}
	return true
}
