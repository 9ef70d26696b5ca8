package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"grimoire/internal/models"
	"grimoire/internal/styles"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) UpdateModelSelectorContent() {
	var items []string
	for i, name := range m.AvailableModels {
		isSelected := i == m.SelectedModelIndex
		isCurrent := m.CurrentModel == name

		displayName := name
		if isCurrent {
			displayName = "● " + displayName
		} else {
			displayName = "  " + displayName
		}

		var styledItem string
		if isSelected {
			styledItem = styles.ModalSelectedStyle.Copy().
				Width(styles.ContentWidth).
				Render(displayName)
		} else {
			style := styles.ModalItemStyle.Copy().Width(styles.ContentWidth)
			if isCurrent {
				style = style.Foreground(lipgloss.Color("#90CAF9"))
			} else {
				style = style.Foreground(lipgloss.AdaptiveColor{Light: "#1a1a2e", Dark: "#FFFFFF"})
			}
			styledItem = style.Render(displayName)
		}

		items = append(items, styledItem)
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, items...)
	m.ModelViewport.SetContent(listContent)
}

func (m *Model) RenderModelSelector() string {
	title := styles.ModalTitleStyle.Render("Select Ollama Model")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.ModelViewport.View())

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • Enter: select • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderHistorySelector() string {
	totalPages := (m.HistoryChatCount + HistoryPageSize - 1) / HistoryPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("Recent Chats (%d) - Page %d/%d", m.HistoryChatCount, m.HistoryPage+1, totalPages))

	var body string
	if m.HistoryErr != nil {
		errLine := lipgloss.NewStyle().Width(styles.ContentWidth).Render(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.HistoryErr)))
		body = errLine
	} else if len(m.HistoryChats) == 0 {
		body = styles.ModalItemStyle.Render(lipgloss.NewStyle().Foreground(styles.HintColor).Render("No chats yet"))
	} else {
		items := make([]string, 0, len(m.HistoryChats))
		for i, chat := range m.HistoryChats {
			isSelected := i == m.HistorySelectedIdx
			cursor := "  "
			if isSelected {
				cursor = "> "
			}
			timeStr := RelativeTime(time.Unix(chat.UpdatedAtUnix, 0))
			prompt := PromptPreview(chat.LastUserPrompt)
			if prompt == "" {
				prompt = "(no prompt)"
			}
			availableWidth := styles.ContentWidth - 2 - len(cursor) - 1 - len(timeStr)
			prompt = TruncateRunes(prompt, availableWidth)

			itemContent := fmt.Sprintf("%s%s %s", cursor, prompt, lipgloss.NewStyle().Foreground(styles.HintColor).Render(timeStr))
			if isSelected {
				items = append(items, styles.ModalSelectedStyle.Render(itemContent))
			} else {
				items = append(items, styles.ModalItemStyle.Render(itemContent))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • ←/→: page • Enter: open • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Ctrl+C", "Quit Application"},
		{"Ctrl+N", "New Chat Session"},
		{"Ctrl+R", "Toggle Chat/RAG Mode"},
		{"Ctrl+B", "Select Ollama Model"},
		{"Ctrl+O", "Select Document Directory (RAG)"},
		{"Ctrl+U", "Upload & Index Documents (RAG)"},
		{"Ctrl+H", "View Chat History"},
		{"Ctrl+S", "View Shortcuts (this menu)"},
	}

	var items []string
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFCC80")).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0E0E0"))

	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", keyStyle.Render(s.key), descStyle.Render(s.desc))
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, items...)
	content := lipgloss.JoinVertical(lipgloss.Left, title, listContent)

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderDirPrompt() string {
	title := styles.ModalTitleStyle.Render("Select Document Directory")

	body := lipgloss.NewStyle().Width(styles.ContentWidth).Render(m.DirInput.View())

	note := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		Render("PDF, MD and TXT files are indexed recursively.")

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, "", note)

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Enter: confirm • Esc: cancel")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderBottomBar() string {
	// 1. Mode Badge (Left)
	modeBadge := strings.ToUpper(m.AppMode.String())
	mode := styles.ModeBadgeStyle.
		Background(styles.ModeColor(m.AppMode.String())).
		Render(modeBadge)

	// 2. Model Name
	modelName := TruncateRunes(m.CurrentModel, 25)
	model := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#B39DDB")).
		Render(modelName)

	leftParts := []string{mode, "  ", model}

	// 3. RAG-only segments: selected directory and upload status.
	if m.AppMode == models.ModeRAG {
		dirDisplay := m.SelectedDir
		if dirDisplay == "" {
			dirDisplay = "(no directory)"
		} else if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(dirDisplay, home) {
			dirDisplay = "~" + dirDisplay[len(home):]
		}
		dirDisplay = TruncateRunes(dirDisplay, 30)
		dir := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render(dirDisplay)
		leftParts = append(leftParts, "  ", dir)

		if m.Uploading {
			leftParts = append(leftParts, "  ", styles.UploadStatusStyle.Render("indexing..."))
		} else if m.UploadNotice != "" {
			leftParts = append(leftParts, "  ", styles.NoticeStyle.Render("indexed"))
		}
	}

	// 4. Help Hint (Far Right)
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, leftParts...)
	rightSide := help

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	spacer := strings.Repeat(" ", availableWidth)

	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, spacer, rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(0, 1).
		Render(bar)
}

func GetWelcomeScreen(width, height int) string {
	art := `
 ╭─────────────────────────────────────────────────────────╮
 │                                                         │
 │    ██████  ██████  ██ ███    ███  ██████  ██ ██████     │
 │   ██       ██   ██ ██ ████  ████ ██    ██ ██ ██   ██    │
 │   ██   ███ ██████  ██ ██ ████ ██ ██    ██ ██ ██████     │
 │   ██    ██ ██   ██ ██ ██  ██  ██ ██    ██ ██ ██   ██    │
 │    ██████  ██   ██ ██ ██      ██  ██████  ██ ██   ██    │
 │                                            ███████      │
 │                                            ██           │
 │                                            █████        │
 │                                            ██           │
 │                                            ███████      │
 ╰─────────────────────────────────────────────────────────╯
`
	subtitle := "Chat with local models, or query your own documents."

	styledArt := styles.WelcomeArtStyle.Render(art)
	styledSubtitle := styles.WelcomeSubtitleStyle.Italic(true).Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, "", styledSubtitle)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) UpdateViewport() {
	if len(m.Messages) == 0 && !m.Loading && !m.Uploading {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	content := strings.Join(m.Messages, "\n\n")
	if m.Loading || m.Uploading {
		statusText := " Generating..."
		if m.Uploading {
			statusText = " Uploading and indexing documents..."
		}

		var loadingParts []string
		loadingParts = append(loadingParts, styles.AiLabelStyle.Render("GRIMOIRE"))
		loadingParts = append(loadingParts, fmt.Sprintf("%s%s", m.Spinner.View(), statusText))

		loadingMsg := strings.Join(loadingParts, "\n")
		if len(m.Messages) > 0 {
			content = content + "\n\n" + loadingMsg
		} else {
			content = loadingMsg
		}
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoBottom()
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("GRIMOIRE"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)
	bottomBar := m.RenderBottomBar()

	content := lipgloss.JoinVertical(lipgloss.Left, chatArea, bottomBar)

	if m.HistoryOpen {
		return m.renderModal(m.RenderHistorySelector())
	}
	if m.ModelSelectorOpen {
		return m.renderModal(m.RenderModelSelector())
	}
	if m.ShortcutsOpen {
		return m.renderModal(m.RenderShortcutsModal())
	}
	if m.DirPromptOpen {
		return m.renderModal(m.RenderDirPrompt())
	}

	return content
}

func (m *Model) renderModal(inner string) string {
	modal := styles.ModalStyle.Width(ModalWidth).Render(inner)

	return lipgloss.NewStyle().
		Background(lipgloss.Color("rgba(0,0,0,0.7)")).
		Render(lipgloss.Place(
			m.WindowWidth,
			m.WindowHeight,
			lipgloss.Center,
			lipgloss.Center,
			modal,
		))
}
