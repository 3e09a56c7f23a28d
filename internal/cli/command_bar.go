package cli

import (
	"sort"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// commandBar is the persistent text input at the bottom of the TUI.
// It handles command entry, autocomplete suggestions, and history navigation.
type commandBar struct {
	input   textinput.Model
	state   *SharedState
	focused bool

	// history
	history    []string
	historyIdx int

	commands []string
}

func newCommandBar(state *SharedState) commandBar {
	ti := textinput.New()
	ti.Prompt = ""
	ti.ShowSuggestions = true
	ti.CharLimit = 500
	ti.KeyMap.NextSuggestion = key.NewBinding(key.WithKeys("ctrl+n"))
	ti.KeyMap.PrevSuggestion = key.NewBinding(key.WithKeys("ctrl+p"))

	hist := loadHistoryFromPath(state.App.HistoryPath)

	return commandBar{
		input:      ti,
		state:      state,
		history:    hist,
		historyIdx: len(hist),
		commands:   commandLines(NewRootCmd(state.App)),
	}
}

// Focus gives focus to the command bar.
func (c *commandBar) Focus() {
	c.focused = true
	c.input.Focus()
}

// Blur removes focus from the command bar.
func (c *commandBar) Blur() {
	c.focused = false
	c.input.Blur()
}

// Focused returns whether the command bar has focus.
func (c *commandBar) Focused() bool {
	return c.focused
}

// SetWidth updates the input width for terminal resizing.
func (c *commandBar) SetWidth(w int) {
	c.input.Width = w - len(promptPlain) - 1
}

// Update handles key messages when the command bar is focused.
func (c *commandBar) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(c.input.Value())
		c.input.Reset()
		c.input.SetSuggestions(nil)
		if input == "" {
			return nil
		}
		c.addHistory(input)
		return c.executeCommand(input)

	case tea.KeyUp:
		c.historyUp()
		return nil

	case tea.KeyDown:
		c.historyDown()
		return nil

	case tea.KeyEsc:
		c.Blur()
		return nil

	default:
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		c.updateSuggestions()
		return cmd
	}
}

// UpdateNonKey handles non-key messages (e.g., cursor blink).
func (c *commandBar) UpdateNonKey(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// View renders the command bar.
func (c *commandBar) View() string {
	if !c.focused {
		return promptPrefix() + formatter.Dim("press : to type a command")
	}
	return promptPrefix() + c.input.View()
}

const promptPlain = "taskdesk > "

func promptPrefix() string {
	return formatter.StylePurple.Render("taskdesk") + " " + formatter.Dim("❯") + " "
}

// ── history ──────────────────────────────────────────────────────────────────

func (c *commandBar) addHistory(line string) {
	if line == "" {
		return
	}
	c.history = append(c.history, line)
	c.historyIdx = len(c.history)
	appendHistoryToPath(c.state.App.HistoryPath, line)
}

func (c *commandBar) historyUp() {
	if c.historyIdx > 0 {
		c.historyIdx--
		c.input.SetValue(c.history[c.historyIdx])
		c.input.CursorEnd()
	}
}

func (c *commandBar) historyDown() {
	if c.historyIdx < len(c.history)-1 {
		c.historyIdx++
		c.input.SetValue(c.history[c.historyIdx])
		c.input.CursorEnd()
	} else {
		c.historyIdx = len(c.history)
		c.input.SetValue("")
	}
}

// ── suggestions ──────────────────────────────────────────────────────────────

// shellWords are the commands the bar handles itself.
var shellWords = []string{
	"task", "delivery", "new task", "new delivery", "new period",
	"help", "clear", "quit", "exit",
}

// commandLines lists every command path of the cobra tree plus the bar's own
// words, as full input lines.
func commandLines(root *cobra.Command) []string {
	seen := map[string]bool{}
	var lines []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			lines = append(lines, s)
		}
	}
	var walk func(cmd *cobra.Command, prefix string)
	walk = func(cmd *cobra.Command, prefix string) {
		for _, sub := range cmd.Commands() {
			if sub.Hidden || !sub.IsAvailableCommand() || sub.Name() == "tui" {
				continue
			}
			line := strings.TrimSpace(prefix + " " + sub.Name())
			add(line)
			walk(sub, line)
		}
	}
	walk(root, "")
	for _, w := range shellWords {
		add(w)
	}
	sort.Strings(lines)
	return lines
}

func (c *commandBar) updateSuggestions() {
	c.input.SetSuggestions(filterSuggestions(c.commands, c.input.Value()))
}

// filterSuggestions returns the entries of pool that extend prefix,
// case-insensitively.
func filterSuggestions(pool []string, prefix string) []string {
	if strings.TrimSpace(prefix) == "" {
		return nil
	}
	lower := strings.ToLower(prefix)
	var out []string
	for _, s := range pool {
		if len(s) > len(prefix) && strings.HasPrefix(strings.ToLower(s), lower) {
			out = append(out, s)
		}
	}
	return out
}
