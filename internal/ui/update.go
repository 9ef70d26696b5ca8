package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grimoire/internal/db"
	"grimoire/internal/models"
	"grimoire/internal/scanner"
	"grimoire/internal/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Loading || m.Uploading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if m.HistoryOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "ctrl+h":
				m.HistoryOpen = false
				m.HistoryErr = nil
				return m, nil
			case "up", "k":
				if len(m.HistoryChats) == 0 {
					return m, nil
				}
				m.HistorySelectedIdx--
				if m.HistorySelectedIdx < 0 {
					m.HistorySelectedIdx = len(m.HistoryChats) - 1
				}
				return m, nil
			case "down", "j":
				if len(m.HistoryChats) == 0 {
					return m, nil
				}
				m.HistorySelectedIdx++
				if m.HistorySelectedIdx >= len(m.HistoryChats) {
					m.HistorySelectedIdx = 0
				}
				return m, nil
			case "enter":
				if len(m.HistoryChats) == 0 {
					return m, nil
				}
				chat := m.HistoryChats[m.HistorySelectedIdx]
				if err := m.LoadChatFromDB(chat.ID, chat.ModelName); err != nil {
					m.HistoryErr = err
					return m, nil
				}
				m.HistoryOpen = false
				m.HistoryErr = nil
				return m, nil
			case "left", "h":
				if m.HistoryPage > 0 {
					m.HistoryPage--
					m.RefreshHistoryFromDB()
				}
				return m, nil
			case "right", "l":
				totalPages := (m.HistoryChatCount + HistoryPageSize - 1) / HistoryPageSize
				if m.HistoryPage < totalPages-1 {
					m.HistoryPage++
					m.RefreshHistoryFromDB()
				}
				return m, nil
			}
			return m, nil
		}

		if m.ModelSelectorOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "ctrl+b":
				m.ModelSelectorOpen = false
				return m, nil
			case "up", "k":
				m.SelectedModelIndex--
				if m.SelectedModelIndex < 0 {
					m.SelectedModelIndex = len(m.AvailableModels) - 1
				}
				m.SyncModelViewportScroll()
				m.UpdateModelSelectorContent()
				return m, nil
			case "down", "j":
				m.SelectedModelIndex++
				if m.SelectedModelIndex >= len(m.AvailableModels) {
					m.SelectedModelIndex = 0
				}
				m.SyncModelViewportScroll()
				m.UpdateModelSelectorContent()
				return m, nil
			case "enter":
				m.CurrentModel = m.AvailableModels[m.SelectedModelIndex]
				m.ModelSelectorOpen = false
				return m, nil
			}
			return m, nil
		}

		if m.ShortcutsOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "?", "ctrl+s":
				m.ShortcutsOpen = false
				return m, nil
			}
			return m, nil
		}

		if m.DirPromptOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.DirPromptOpen = false
				m.DirInput.Blur()
				m.TextInput.Focus()
				return m, nil
			case "enter":
				m.SelectedDir = strings.TrimSpace(m.DirInput.Value())
				m.DirPromptOpen = false
				m.DirInput.Blur()
				m.TextInput.Focus()
				m.UploadNotice = ""
				return m, nil
			}
			m.DirInput, tiCmd = m.DirInput.Update(msg)
			return m, tiCmd
		}

		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			m.ResetSession()
			return m, nil

		case tea.KeyCtrlR:
			// Toggle between Chat and RAG mode. Agent state is left
			// untouched; only the visible controls change.
			if m.AppMode == models.ModeChat {
				m.AppMode = models.ModeRAG
			} else {
				m.AppMode = models.ModeChat
			}
			return m, nil

		case tea.KeyCtrlB:
			m.ModelSelectorOpen = true
			m.HistoryOpen = false
			m.ShortcutsOpen = false
			m.UpdateModelSelectorContent()
			m.SyncModelViewportScroll()
			return m, nil

		case tea.KeyCtrlS:
			m.ShortcutsOpen = true
			m.ModelSelectorOpen = false
			m.HistoryOpen = false
			return m, nil

		case tea.KeyCtrlH:
			m.ModelSelectorOpen = false
			m.HistoryOpen = true
			m.ShortcutsOpen = false
			m.HistoryPage = 0
			m.RefreshHistoryFromDB()
			return m, nil

		case tea.KeyCtrlO:
			if m.AppMode != models.ModeRAG {
				return m, nil
			}
			m.DirPromptOpen = true
			m.DirInput.SetValue(m.SelectedDir)
			m.DirInput.Focus()
			m.TextInput.Blur()
			return m, nil

		case tea.KeyCtrlU:
			if m.AppMode != models.ModeRAG {
				return m, nil
			}
			return m, m.StartUpload()

		case tea.KeyEnter:
			if m.Loading {
				return m, nil
			}
			input := strings.TrimSpace(m.TextInput.Value())
			if input == "" {
				m.Messages = append(m.Messages, styles.ErrorStyle.Render("Please enter a query."))
				m.UpdateViewport()
				return m, nil
			}

			if input == "/clear" || input == "/reset" {
				m.ResetSession()
				return m, nil
			}

			m.Messages = append(m.Messages, FormatUserMessage(input, m.Viewport.Width, len(m.Messages) == 0))
			if err := m.PersistUserMessage(input); err != nil {
				m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("History error: %v", err)))
			}
			m.TextInput.Reset()
			m.updateInputLayout()
			m.Loading = true
			m.UpdateViewport()

			return m, tea.Batch(m.SendQuery(input), m.Spinner.Tick)
		}

	case QueryResultMsg:
		m.Loading = false
		displayContent := msg.Content
		if m.Renderer != nil {
			rendered, _ := m.Renderer.Render(msg.Content)
			displayContent = strings.TrimSpace(rendered)
		}
		m.Messages = append(m.Messages, FormatAIMessage(displayContent))
		if err := m.PersistAssistantMessage(msg.Content); err != nil {
			m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("History error: %v", err)))
		}
		m.UpdateViewport()
		return m, nil

	case UploadDoneMsg:
		m.Uploading = false
		if msg.Err != nil {
			m.UploadNotice = ""
			m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Upload error: %v", msg.Err)))
		} else {
			m.UploadNotice = fmt.Sprintf("%d documents successfully uploaded and indexed.", msg.Count)
			m.Messages = append(m.Messages, styles.NoticeStyle.Render(m.UploadNotice))
		}
		m.UpdateViewport()
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.Err = msg
		m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", msg)))
		m.UpdateViewport()
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = msg.Width - 10
		if ModalWidth > 60 {
			ModalWidth = 60
		}
		if ModalWidth < 30 {
			ModalWidth = 30
		}
		styles.ContentWidth = ModalWidth - 6

		m.ModelViewport.Width = styles.ContentWidth
		m.ModelViewport.Height = msg.Height - 15
		if m.ModelViewport.Height > 20 {
			m.ModelViewport.Height = 20
		}
		if m.ModelViewport.Height < 5 {
			m.ModelViewport.Height = 5
		}

		// Reserve 2 lines for bottom bar + border
		chatWidth := msg.Width - 2
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(chatWidth-6),
		)
		m.UpdateViewport()
		return m, tea.Batch(tiCmd, vpCmd)
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Filter out terminal background color queries and cursor reference codes that leak into the input
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.TextInput.MaxHeight = maxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}

// ResetSession starts a fresh conversation. The knowledge agent and
// selected directory survive the reset; only the transcript clears.
func (m *Model) ResetSession() {
	m.Messages = []string{}
	m.CurrentChatID = 0
	m.Err = nil
	m.HistoryOpen = false
	m.HistoryErr = nil
	m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
	m.Viewport.GotoTop()
	m.TextInput.Reset()
	m.updateInputLayout()
}

func (m *Model) RefreshHistoryFromDB() {
	m.HistoryErr = nil
	m.HistoryChats = nil
	m.HistorySelectedIdx = 0

	if m.DBErr != nil {
		m.HistoryErr = m.DBErr
		return
	}
	if m.DB == nil {
		m.HistoryErr = fmt.Errorf("history database not initialized")
		return
	}

	offset := m.HistoryPage * HistoryPageSize
	count, chats, err := db.GetRecentChats(m.DB, HistoryPageSize, offset)
	if err != nil {
		m.HistoryErr = err
		return
	}
	m.HistoryChatCount = count
	m.HistoryChats = chats
}

func (m *Model) PersistUserMessage(content string) error {
	if m.DBErr != nil {
		return m.DBErr
	}
	if m.DB == nil {
		return fmt.Errorf("history database not initialized")
	}

	nowUnix := time.Now().Unix()
	if m.CurrentChatID == 0 {
		id, err := db.CreateChat(m.DB, nowUnix, m.CurrentModel, m.AppMode.String())
		if err != nil {
			return err
		}
		m.CurrentChatID = id
	}

	if err := db.InsertDBMessage(m.DB, m.CurrentChatID, models.RoleUser, content, nowUnix); err != nil {
		return err
	}
	return db.UpdateChatOnUser(m.DB, m.CurrentChatID, nowUnix, m.CurrentModel, PromptPreview(content))
}

func (m *Model) PersistAssistantMessage(content string) error {
	if m.CurrentChatID == 0 {
		return nil
	}
	if m.DBErr != nil {
		return m.DBErr
	}
	if m.DB == nil {
		return fmt.Errorf("history database not initialized")
	}

	nowUnix := time.Now().Unix()
	if err := db.InsertDBMessage(m.DB, m.CurrentChatID, models.RoleAssistant, content, nowUnix); err != nil {
		return err
	}
	return db.TouchChat(m.DB, m.CurrentChatID, nowUnix)
}

func (m *Model) LoadChatFromDB(chatID int64, modelName string) error {
	if m.DBErr != nil {
		return m.DBErr
	}
	if m.DB == nil {
		return fmt.Errorf("history database not initialized")
	}

	msgs, err := db.GetChatMessages(m.DB, chatID)
	if err != nil {
		return err
	}

	if modelName != "" {
		if idx, ok := FindModel(m.AvailableModels, modelName); ok {
			m.CurrentModel = modelName
			m.SelectedModelIndex = idx
		}
	}

	m.CurrentChatID = chatID
	m.Loading = false
	m.Messages = []string{}

	for _, msg := range msgs {
		switch msg.Role {
		case models.RoleUser:
			m.Messages = append(m.Messages, FormatUserMessage(msg.Content, m.Viewport.Width, len(m.Messages) == 0))
		case models.RoleAssistant:
			displayContent := msg.Content
			if m.Renderer != nil {
				rendered, _ := m.Renderer.Render(msg.Content)
				displayContent = strings.TrimSpace(rendered)
			}
			m.Messages = append(m.Messages, FormatAIMessage(displayContent))
		}
	}

	m.UpdateViewport()
	return nil
}

// StartUpload scans the selected directory, takes the single-flight
// slot and hands the indexing work to a background command. Rejections
// surface as transcript lines immediately.
func (m *Model) StartUpload() tea.Cmd {
	var files []string
	if m.SelectedDir != "" {
		var err error
		files, err = scanner.Scan(m.SelectedDir)
		if err != nil {
			m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Upload error: %v", err)))
			m.UpdateViewport()
			return nil
		}
	}

	if err := m.Session.BeginUpload(m.SelectedDir, files, m.CurrentModel); err != nil {
		m.Messages = append(m.Messages, styles.ErrorStyle.Render(fmt.Sprintf("Upload error: %v", err)))
		m.UpdateViewport()
		return nil
	}

	m.Uploading = true
	m.UploadNotice = ""
	m.UpdateViewport()

	sess := m.Session
	model := m.CurrentModel
	return tea.Batch(func() tea.Msg {
		count, err := sess.RunUpload(context.Background(), model, files)
		return UploadDoneMsg{Count: count, Err: err}
	}, m.Spinner.Tick)
}

// SendQuery dispatches the query off the render loop. Mode and model
// are captured at submit time so a later toggle cannot reroute an
// in-flight query.
func (m *Model) SendQuery(input string) tea.Cmd {
	sess := m.Session
	mode := m.AppMode
	model := m.CurrentModel

	return func() tea.Msg {
		out, err := sess.Query(context.Background(), mode, model, input)
		if err != nil {
			return ErrMsg(err)
		}
		return QueryResultMsg{Content: out}
	}
}
