package ui

import (
	"time"

	"grimoire/internal/agent"
	"grimoire/internal/config"
	"grimoire/internal/db"
	"grimoire/internal/discovery"
	"grimoire/internal/models"
	"grimoire/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func InitialModel(cfg *config.Config) Model {
	available := discovery.ListModels()

	factory := session.FactoryAdapter{F: agent.NewFactory(cfg)}
	sess := session.New(factory, available, time.Duration(cfg.QueryTimeoutSecs)*time.Second)

	ti := textarea.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 6
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	di := textinput.New()
	di.Placeholder = "/path/to/documents"
	di.Prompt = "❯ "
	di.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB"))

	vp := viewport.New(60, 15)
	mvp := viewport.New(ModalWidth-4, 15)

	dbConn, dbErr := db.OpenHistoryDB()

	return Model{
		TextInput:          ti,
		DirInput:           di,
		Viewport:           vp,
		ModelViewport:      mvp,
		Spinner:            sp,
		Session:            sess,
		Config:             cfg,
		DB:                 dbConn,
		DBErr:              dbErr,
		CurrentChatID:      0,
		Renderer:           nil,
		Messages:           []string{},
		HistoryOpen:        false,
		HistorySelectedIdx: 0,
		HistoryChatCount:   0,
		HistoryChats:       nil,
		HistoryErr:         nil,
		HistoryPage:        0,
		ModelSelectorOpen:  false,
		AvailableModels:    available,
		CurrentModel:       available[0],
		SelectedModelIndex: 0,
		AppMode:            models.ModeChat, // Start in chat mode by default
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
	)
}

func NewProgram(cfg *config.Config) *tea.Program {
	m := InitialModel(cfg)
	return tea.NewProgram(&m, tea.WithAltScreen())
}
