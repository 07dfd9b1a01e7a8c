package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kodstechnologies/lm-backoffice/internal/db"
)

// ProfileAction is the choice made in the profile selector.
type ProfileAction int

const (
	ProfileExit ProfileAction = iota
	ProfileOpen
	ProfileCreate
)

// ProfileResult is the user's selection from the profile selector.
type ProfileResult struct {
	Action ProfileAction
	Path   string // database file of the profile
}

// ProfileSelectorModel picks the local profile database. Each profile keeps
// its own session, snapshots and audit log, typically one per backend.
type ProfileSelectorModel struct {
	PageState

	dir        string
	profiles   []string
	cursor     int
	createMode bool
	input      textinput.Model
	err        error
	result     ProfileResult
}

// NewProfileSelectorModel creates a selector over the .db files in dir.
func NewProfileSelectorModel(dir string, profiles []string) ProfileSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "staging"
	ti.CharLimit = 64
	ti.TextStyle = NormalStyle
	ti.PromptStyle = NormalStyle

	return ProfileSelectorModel{
		PageState: NewPageState(DefaultLayout()),
		dir:       dir,
		profiles:  profiles,
		input:     ti,
	}
}

func (m ProfileSelectorModel) Init() tea.Cmd {
	return StandardInit()
}

func (m ProfileSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.UpdateLayout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.createMode {
			return m.handleCreateMode(msg)
		}
		return m.handleSelectMode(msg)
	}
	return m, nil
}

func (m ProfileSelectorModel) handleSelectMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := len(m.profiles) + 2 // profiles, "Create New", "Exit"

	switch msg.String() {
	case "esc", "q", "ctrl+c":
		m.result = ProfileResult{Action: ProfileExit}
		m.Quitting = true
		return m, tea.Quit

	case "enter":
		switch {
		case m.cursor < len(m.profiles):
			m.result = ProfileResult{Action: ProfileOpen, Path: filepath.Join(m.dir, m.profiles[m.cursor])}
			m.Quitting = true
			return m, tea.Quit
		case m.cursor == len(m.profiles):
			m.createMode = true
			m.err = nil
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		default:
			m.result = ProfileResult{Action: ProfileExit}
			m.Quitting = true
			return m, tea.Quit
		}

	default:
		m.cursor = HandleNavigationKeys(msg.String(), m.cursor, total)
	}
	return m, nil
}

func (m ProfileSelectorModel) handleCreateMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.createMode = false
		m.input.Blur()
		return m, nil

	case "enter":
		name, err := ProfileName(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.result = ProfileResult{Action: ProfileCreate, Path: filepath.Join(m.dir, name+".db")}
		m.Quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ProfileSelectorModel) View() string {
	if m.Quitting {
		return ""
	}

	b := NewPageView(m.Layout).Title("Select Profile").Divider().Spacing(1)

	if m.createMode {
		b.Text(" Profile name")
		b.CustomContent(" " + m.input.View() + "\n")
		b.Error(m.err)
		return b.Help("Enter: create | Esc: cancel").Build()
	}

	if len(m.profiles) == 0 {
		b.DimText(" No profiles yet")
		b.Spacing(1)
	}
	for i, p := range m.profiles {
		b.CustomContent(RenderListItem(strings.TrimSuffix(p, filepath.Ext(p)), i == m.cursor, m.Layout.InnerWidth) + "\n")
	}
	b.Spacing(1)
	b.CustomContent(RenderListItem("Create New Profile", m.cursor == len(m.profiles), m.Layout.InnerWidth) + "\n")
	b.CustomContent(RenderListItem("Exit", m.cursor == len(m.profiles)+1, m.Layout.InnerWidth) + "\n")
	return b.Help("↑/↓: navigate | Enter: select | q: quit").Build()
}

// Result returns the user's selection after the program exits
func (m ProfileSelectorModel) Result() ProfileResult {
	return m.result
}

// ProfileName cleans a profile name typed by the user. Letters, digits,
// dashes and underscores are allowed.
func ProfileName(input string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(strings.TrimSpace(input)), ".db")
	if name == "" || name == "." {
		return "", fmt.Errorf("profile name is required")
	}
	for _, c := range name {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
		if !ok {
			return "", fmt.Errorf("profile name may only contain letters, digits, - and _")
		}
	}
	return name, nil
}

// RunProfileSelector lists the profiles in dir and returns the choice.
func RunProfileSelector(dir string) (ProfileResult, error) {
	profiles, err := db.ListProfileFiles(dir)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("failed to list profiles: %w", err)
	}
	p := tea.NewProgram(NewProfileSelectorModel(dir, profiles), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return ProfileResult{}, fmt.Errorf("profile selector error: %w", err)
	}
	return finalModel.(ProfileSelectorModel).Result(), nil
}
