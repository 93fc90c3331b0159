package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/effect"
)

const (
	stateMenu = iota
	statePreset
	stateLive
)

// App lets the user pick an effect and a preset before handing over to
// the live view.
type App struct {
	state   int
	cursor  int
	effects []string
	presets []string
	chosen  string

	base   *config.Config
	live   Model
	liveCf Config
	err    error
	width  int
	height int
	styles styles
}

// NewApp returns the picker. base supplies everything a preset leaves
// unset; liveCfg supplies the registry, cues and logger of the live view.
func NewApp(base *config.Config, liveCfg Config) *App {
	if base == nil {
		base = config.DefaultConfig()
	}
	if liveCfg.Registry == nil {
		liveCfg.Registry = effect.NewRegistry()
	}
	return &App{
		state:   stateMenu,
		effects: liveCfg.Registry.List(),
		base:    base,
		liveCf:  liveCfg,
		styles:  newStyles(ThemeDark),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateLive {
			return a.forward(msg)
		}
		return a, nil
	case tea.KeyMsg:
		switch a.state {
		case stateMenu:
			return a.menuKey(msg)
		case statePreset:
			return a.presetKey(msg)
		}
		return a.forward(msg)
	}
	if a.state == stateLive {
		return a.forward(msg)
	}
	return a, nil
}

func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.live.Update(msg)
	a.live = next.(Model)
	return a, cmd
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.effects)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.chosen = a.effects[a.cursor]
		a.presets = append([]string{"default"}, config.ListPresets(a.chosen)...)
		a.cursor = 0
		a.state = statePreset
	}
	return a, nil
}

func (a App) presetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "backspace":
		a.state = stateMenu
		a.cursor = 0
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start(a.presets[a.cursor])
	}
	return a, nil
}

func (a App) start(preset string) (tea.Model, tea.Cmd) {
	cfg := *a.base
	cfg.Effect = a.chosen
	if preset != "default" {
		cfg.Apply(config.GetPreset(a.chosen, preset))
	}

	reg := a.liveCf.Registry
	opts, err := cfg.Options(reg.DefaultCount(cfg.Effect))
	if err != nil {
		a.err = err
		return a, nil
	}
	lc := a.liveCf
	lc.Effect = cfg.Effect
	lc.Options = opts
	live, err := NewModel(lc)
	if err != nil {
		a.err = err
		return a, nil
	}
	if a.width > 0 && a.height > 0 {
		live.resize(a.width, a.height)
	}
	a.live = live
	a.state = stateLive
	a.err = nil
	return a, live.Init()
}

// Live returns the live view once an effect has been started.
func (a App) Live() (Model, bool) { return a.live, a.state == stateLive }

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View()
	}

	st := a.styles
	var b strings.Builder
	b.WriteString(st.header.Render(GradientText("DRIFTFIELD", ThemeDark.Primary, ThemeDark.Secondary)) + "\n")

	items := a.effects
	title := "Choose an effect"
	if a.state == statePreset {
		items = a.presets
		title = "Preset for " + a.chosen
	}
	b.WriteString(st.label.UnsetWidth().Render(title) + "\n\n")

	reg := a.liveCf.Registry
	for i, item := range items {
		desc := ""
		if a.state == stateMenu {
			desc = reg.Describe(item)
		} else if p := config.GetPreset(a.chosen, item); p != nil {
			desc = fmt.Sprintf("%d particles, %s", p.Count, p.Theme)
		}
		name := fmt.Sprintf("  %-12s", item)
		if i == a.cursor {
			name = st.selected.Render(fmt.Sprintf("> %-12s", item))
		}
		b.WriteString(name + " " + st.label.UnsetWidth().Render(desc) + "\n")
	}

	if a.err != nil {
		b.WriteString("\n" + st.recording.UnsetBlink().Render(a.err.Error()) + "\n")
	}
	b.WriteString(st.help.Render("\n↑↓:Move  Enter:Select  Esc:Back  Q:Quit"))
	return st.overlay.Render(b.String())
}
