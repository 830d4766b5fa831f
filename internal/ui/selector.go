package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection.
var ErrCancelled = errors.New("selection cancelled")

// SelectorOption is one row of the menu.
type SelectorOption struct {
	Label       string
	Description string
}

// Selector is an arrow-key menu that picks one option. On a non-terminal
// input it falls back to reading a number.
type Selector struct {
	question string
	options  []SelectorOption
	selected int
	colored  bool
	in       io.Reader
	out      io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []SelectorOption, colored bool, in io.Reader, out io.Writer) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       in,
		out:      out,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run shows the menu and returns the index of the chosen option.
func (s *Selector) Run() (int, error) {
	if len(s.options) == 0 {
		return -1, ErrCancelled
	}

	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.runSimple()
	}
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // show cursor
	}()
	fmt.Fprint(s.out, "\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return -1, err
		}

		switch b {
		case '\r', '\n':
			s.clearMenu(totalLines)
			return s.selected, nil
		case 3, 'q': // Ctrl+C
			s.clearMenu(totalLines)
			return -1, ErrCancelled
		case 'j':
			s.move(1)
		case 'k':
			s.move(-1)
		case 27: // escape sequence
			if b2, _ := reader.ReadByte(); b2 == '[' {
				switch b3, _ := reader.ReadByte(); b3 {
				case 'A':
					s.move(-1)
				case 'B':
					s.move(1)
				}
			}
		default:
			if b >= '1' && b <= '9' && int(b-'1') < len(s.options) {
				s.clearMenu(totalLines)
				return int(b - '1'), nil
			}
		}

		s.clearMenu(totalLines)
		s.printMenu()
	}
}

func (s *Selector) move(delta int) {
	n := len(s.options)
	s.selected = ((s.selected+delta)%n + n) % n
}

func (s *Selector) render(st lipgloss.Style, text string) string {
	if s.colored {
		return st.Render(text)
	}
	return text
}

func (s *Selector) printMenu() {
	var sb strings.Builder
	sb.WriteString(s.render(s.questionStyle, s.question) + "\r\n")
	sb.WriteString(s.render(s.hintStyle, "[j/k or arrows] move  [enter] select  [q] cancel") + "\r\n\r\n")

	for i, opt := range s.options {
		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}
		if i == s.selected {
			sb.WriteString(s.render(s.cursorStyle, "> ") + s.render(s.selectedStyle, label))
		} else {
			sb.WriteString(s.render(s.dimStyle, "  ") + s.render(s.optionStyle, label))
		}
		sb.WriteString("\r\n")
	}
	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

func (s *Selector) runSimple() (int, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, label)
	}
	fmt.Fprint(s.out, "Enter number: ")

	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && line == "" {
		return -1, ErrCancelled
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(s.options) {
		return -1, ErrCancelled
	}
	return n - 1, nil
}
