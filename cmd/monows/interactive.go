package main

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fbkclanna/monows/internal/config"
	"github.com/fbkclanna/monows/internal/git"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// --- inputModel: text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if m.validate != nil {
				if err := m.validate(m.textInput.Value()); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirmModel: yes/no confirmation ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes, no := " Yes ", " No "
	if m.value {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

// --- prompt helpers ---

// prompter asks the user for input. The terminal implementation runs
// bubbletea programs; tests substitute scripted answers.
type prompter interface {
	Input(title, placeholder string, validate func(string) error) (string, error)
	Confirm(title string) (bool, error)
}

type teaPrompter struct{}

func (teaPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	result, err := tea.NewProgram(inputModel{textInput: ti, title: title, validate: validate}).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", fmt.Errorf("user aborted")
	}
	return rm.textInput.Value(), nil
}

func (teaPrompter) Confirm(title string) (bool, error) {
	result, err := tea.NewProgram(confirmModel{title: title, value: true}).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, fmt.Errorf("user aborted")
	}
	return rm.value, nil
}

// repoIDFromURL extracts a repository name from a Git URL.
// Handles both SSH (git@host:org/repo.git) and HTTPS (https://host/org/repo.git).
func repoIDFromURL(url string) string {
	url = strings.TrimRight(url, "/")

	// SSH format: git@github.com:org/repo.git
	if idx := strings.LastIndex(url, ":"); idx != -1 && !strings.Contains(url, "://") {
		url = url[idx+1:]
	}

	return strings.TrimSuffix(path.Base(url), ".git")
}

// repoURLValidator rejects URLs whose repository name cannot be inferred or
// is already taken.
func repoURLValidator(seenIDs map[string]bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("repository URL is required")
		}
		id := repoIDFromURL(s)
		if id == "" || id == "." || id == ".." {
			return fmt.Errorf("cannot infer repository name from URL")
		}
		if seenIDs[id] {
			return fmt.Errorf("repository ID %q is already added", id)
		}
		return nil
	}
}

// scopeValidator accepts an empty answer or an npm scope prefix like "@nmshd/".
func scopeValidator(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "@") || !strings.HasSuffix(s, "/") || len(s) < 3 {
		return fmt.Errorf("scope must look like @org/")
	}
	return nil
}

// interactiveConfig collects the package repositories and the internal scope
// of a new workspace.
func interactiveConfig(p prompter, out io.Writer, name string) (*config.Workspace, error) {
	ws := &config.Workspace{Version: 1, Name: name}
	seenIDs := make(map[string]bool)

	for {
		repoURL, err := p.Input(
			"Package repository URL",
			"https://github.com/org/package.git",
			repoURLValidator(seenIDs),
		)
		if err != nil {
			return nil, err
		}
		repo := buildRemoteRepo(out, strings.TrimSpace(repoURL), ws)
		seenIDs[repo.ID] = true
		ws.Repos = append(ws.Repos, repo)

		addMore, err := p.Confirm("Add another repository?")
		if err != nil {
			return nil, err
		}
		if !addMore {
			break
		}
	}

	scope, err := p.Input("Internal package scope (optional)", "@org/", scopeValidator)
	if err != nil {
		return nil, err
	}
	if scope = strings.TrimSpace(scope); scope != "" {
		ws.InternalScopes = []string{scope}
	}
	return ws, nil
}

// buildRemoteRepo builds a config.Repo from a remote URL. The ref is left
// empty when it matches the remote's default branch.
func buildRemoteRepo(out io.Writer, repoURL string, ws *config.Workspace) config.Repo {
	r := config.Repo{ID: repoIDFromURL(repoURL), URL: repoURL}
	branch, err := git.DefaultBranch(repoURL)
	if err != nil {
		branch = "(remote HEAD)"
	}
	_, _ = fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("  → id: %s, path: %s, branch: %s", r.ID, r.EffectivePath(ws), branch)))
	return r
}
