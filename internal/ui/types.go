package ui

import (
	"database/sql"

	"grimoire/internal/config"
	"grimoire/internal/models"
	"grimoire/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

const (
	MaxChatWidth = 100

	HistoryPageSize = 10
)

type ErrMsg error

type (
	// QueryResultMsg carries one completed model answer back to the
	// render loop.
	QueryResultMsg struct {
		Content string
	}

	// UploadDoneMsg reports the outcome of a background upload.
	UploadDoneMsg struct {
		Count int
		Err   error
	}
)

type Model struct {
	Viewport           viewport.Model
	Messages           []string
	TextInput          textarea.Model
	Spinner            spinner.Model
	Session            *session.Session
	Config             *config.Config
	DB                 *sql.DB
	DBErr              error
	CurrentChatID      int64
	Renderer           *glamour.TermRenderer
	Err                error
	Loading            bool
	WindowWidth        int
	WindowHeight       int
	HistoryOpen        bool
	HistorySelectedIdx int
	HistoryChatCount   int
	HistoryChats       []models.ChatListItem
	HistoryErr         error
	HistoryPage        int
	ModelSelectorOpen  bool
	ModelViewport      viewport.Model
	ShortcutsOpen      bool
	AvailableModels    []string
	CurrentModel       string
	SelectedModelIndex int
	AppMode            models.AppMode

	// RAG surface. The directory prompt is a small modal text input;
	// SelectedDir and UploadNotice feed the status bar.
	DirPromptOpen bool
	DirInput      textinput.Model
	SelectedDir   string
	UploadNotice  string
	Uploading     bool
}

// ModalWidth is recomputed on every window resize.
var ModalWidth = 60
