package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grimoire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	reply string
	err   error
	calls int
}

func (f *fakeStarter) Start(ctx context.Context, query string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeFactory struct {
	mu sync.Mutex

	chat    *fakeStarter
	chatErr error

	know      *fakeStarter
	knowErr   error
	knowDelay time.Duration

	chatCalls int
	knowCalls int
}

func (f *fakeFactory) ChatAgent(model string) (Starter, error) {
	f.mu.Lock()
	f.chatCalls++
	f.mu.Unlock()
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chat, nil
}

func (f *fakeFactory) KnowledgeAgent(ctx context.Context, model string, files []string, userID string) (Starter, error) {
	f.mu.Lock()
	f.knowCalls++
	f.mu.Unlock()
	if f.knowDelay > 0 {
		time.Sleep(f.knowDelay)
	}
	if f.knowErr != nil {
		return nil, f.knowErr
	}
	return f.know, nil
}

func newTestSession(f *fakeFactory) *Session {
	return New(f, []string{"m1:latest", "m2:latest"}, 0)
}

func TestQueryEmpty(t *testing.T) {
	s := newTestSession(&fakeFactory{})

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := s.Query(context.Background(), models.ModeChat, "m1:latest", q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestQueryChat(t *testing.T) {
	chat := &fakeStarter{reply: "4"}
	f := &fakeFactory{chat: chat}
	s := newTestSession(f)

	out, err := s.Query(context.Background(), models.ModeChat, "m1:latest", "2+2")
	require.NoError(t, err)
	assert.Equal(t, "4", out)

	// Same model reuses the cached agent.
	_, err = s.Query(context.Background(), models.ModeChat, "m1:latest", "again")
	require.NoError(t, err)
	assert.Equal(t, 1, f.chatCalls)
	assert.Equal(t, 2, chat.calls)

	// Switching models rebuilds.
	_, err = s.Query(context.Background(), models.ModeChat, "m2:latest", "hi")
	require.NoError(t, err)
	assert.Equal(t, 2, f.chatCalls)
}

func TestQueryUnknownModel(t *testing.T) {
	s := newTestSession(&fakeFactory{chat: &fakeStarter{reply: "x"}})

	_, err := s.Query(context.Background(), models.ModeChat, "ghost:latest", "hi")
	var um *UnknownModelError
	require.ErrorAs(t, err, &um)
	assert.Equal(t, "ghost:latest", um.Model)
	assert.Equal(t, "the model 'ghost:latest' is not available in Ollama", err.Error())
}

func TestQueryChatFactoryError(t *testing.T) {
	f := &fakeFactory{chatErr: errors.New("connect refused")}
	s := newTestSession(f)

	_, err := s.Query(context.Background(), models.ModeChat, "m1:latest", "hi")
	require.Error(t, err)

	// A failed build leaves no cached agent behind; the next query
	// tries construction again.
	f.chatErr = nil
	f.chat = &fakeStarter{reply: "ok"}
	out, err := s.Query(context.Background(), models.ModeChat, "m1:latest", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, f.chatCalls)
}

func TestQueryRAGBeforeUpload(t *testing.T) {
	s := newTestSession(&fakeFactory{})

	_, err := s.Query(context.Background(), models.ModeRAG, "m1:latest", "what is in the docs")
	assert.ErrorIs(t, err, ErrNoKnowledge)
}

func TestQueryRAGWhileUploading(t *testing.T) {
	s := newTestSession(&fakeFactory{})
	require.NoError(t, s.BeginUpload("/docs", []string{"a.pdf"}, "m1:latest"))

	_, err := s.Query(context.Background(), models.ModeRAG, "m1:latest", "hi")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestQueryRAGAfterUpload(t *testing.T) {
	know := &fakeStarter{reply: "from the docs"}
	f := &fakeFactory{know: know}
	s := newTestSession(f)

	require.NoError(t, s.BeginUpload("/docs", []string{"a.pdf", "b.md"}, "m1:latest"))
	n, err := s.RunUpload(context.Background(), "m1:latest", []string{"a.pdf", "b.md"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, s.UploadInFlight())
	assert.True(t, s.HasKnowledgeAgent())

	out, err := s.Query(context.Background(), models.ModeRAG, "m1:latest", "summarize")
	require.NoError(t, err)
	assert.Equal(t, "from the docs", out)
	assert.Equal(t, 1, know.calls)
}

func TestBeginUploadValidation(t *testing.T) {
	tests := map[string]struct {
		dir     string
		files   []string
		model   string
		wantErr error
	}{
		"no directory":       {dir: "", files: []string{"a.pdf"}, model: "m1:latest", wantErr: ErrNoDirectory},
		"no supported files": {dir: "/docs", files: nil, model: "m1:latest", wantErr: ErrNoSupportedFiles},
		"ok":                 {dir: "/docs", files: []string{"a.pdf"}, model: "m1:latest"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestSession(&fakeFactory{})
			err := s.BeginUpload(tc.dir, tc.files, tc.model)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.False(t, s.UploadInFlight())
				return
			}
			require.NoError(t, err)
			assert.True(t, s.UploadInFlight())
		})
	}
}

func TestBeginUploadUnknownModel(t *testing.T) {
	s := newTestSession(&fakeFactory{})

	err := s.BeginUpload("/docs", []string{"a.pdf"}, "ghost:latest")
	var um *UnknownModelError
	require.ErrorAs(t, err, &um)
	assert.False(t, s.UploadInFlight())
}

func TestUploadSingleFlight(t *testing.T) {
	f := &fakeFactory{know: &fakeStarter{reply: "ok"}, knowDelay: 50 * time.Millisecond}
	s := newTestSession(f)

	files := []string{"a.pdf"}

	var accepted, rejected int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.BeginUpload("/docs", files, "m1:latest"); err != nil {
				mu.Lock()
				rejected++
				mu.Unlock()
				return
			}
			mu.Lock()
			accepted++
			mu.Unlock()
			_, err := s.RunUpload(context.Background(), "m1:latest", files)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, f.knowCalls)
	assert.False(t, s.UploadInFlight())
}

func TestRunUploadFailureClearsAgent(t *testing.T) {
	f := &fakeFactory{know: &fakeStarter{reply: "ok"}}
	s := newTestSession(f)

	require.NoError(t, s.BeginUpload("/docs", []string{"a.pdf"}, "m1:latest"))
	_, err := s.RunUpload(context.Background(), "m1:latest", []string{"a.pdf"})
	require.NoError(t, err)
	require.True(t, s.HasKnowledgeAgent())

	// A later failed upload must not leave the stale agent installed.
	f.knowErr = errors.New("embedding failed")
	require.NoError(t, s.BeginUpload("/docs", []string{"b.pdf"}, "m1:latest"))
	_, err = s.RunUpload(context.Background(), "m1:latest", []string{"b.pdf"})
	require.Error(t, err)
	assert.False(t, s.UploadInFlight())
	assert.False(t, s.HasKnowledgeAgent())

	_, err = s.Query(context.Background(), models.ModeRAG, "m1:latest", "hi")
	assert.ErrorIs(t, err, ErrNoKnowledge)
}
