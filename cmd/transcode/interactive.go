package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-strings/transcoder"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inputMode int

const (
	modeText inputMode = iota // input is text, shown as bytes and units
	modeHex                   // input is hex UTF-8 bytes, decoded strictly
)

type interactiveModel struct {
	input textinput.Model
	mode  inputMode
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type text"
	ti.Prompt = "text: "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{input: ti, mode: modeText}
}

func runInteractive() error {
	_, err := tea.NewProgram(newInteractiveModel()).Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.toggleMode()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) toggleMode() {
	m.input.SetValue("")
	if m.mode == modeText {
		m.mode = modeHex
		m.input.Prompt = "hex:  "
		m.input.Placeholder = "f0 9f 98 80"
	} else {
		m.mode = modeText
		m.input.Prompt = "text: "
		m.input.Placeholder = "type text"
	}
}

// inspection is what the view shows for one input value.
type inspection struct {
	err   error
	utf8  []byte
	units []uint16
	text  string
}

func inspect(mode inputMode, value string) inspection {
	var in inspection
	switch mode {
	case modeText:
		in.utf8 = []byte(value)
	case modeHex:
		b, err := hex.DecodeString(strings.Join(strings.Fields(value), ""))
		if err != nil {
			in.err = fmt.Errorf("hex: %w", err)
			return in
		}
		in.utf8 = b
	}

	units, err := transcoder.DecodeUTF8(in.utf8)
	if err != nil {
		in.err = err
		return in
	}
	in.units = units

	// re-encode so the round trip is visible
	text, err := transcoder.EncodeString(units)
	if err != nil {
		in.err = err
		return in
	}
	in.text = text
	return in
}

func formatUnits(units []uint16) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%04X", u)
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("UTF-8 ⇄ UTF-16 Inspector"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	in := inspect(m.mode, m.input.Value())
	b.WriteString(labelStyle.Render("utf-8 bytes:  "))
	b.WriteString(strings.ToUpper(hex.EncodeToString(in.utf8)))
	b.WriteString("\n")

	if in.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", in.err)))
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render("utf-16 units: "))
		b.WriteString(resultStyle.Render(formatUnits(in.units)))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("text:         "))
		b.WriteString(resultStyle.Render(in.text))
		b.WriteString("\n")
		if !bytes.Equal([]byte(in.text), in.utf8) {
			b.WriteString(errorStyle.Render("round trip mismatch"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab text/hex • esc quit"))
	return b.String()
}
