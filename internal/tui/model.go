// Package tui is a live dashboard that polls a running filehubd's
// /diagnostics.json and renders the current table of stored paths,
// modeled on the teacher's model/update/render split (model.go,
// render.go, styles.go).
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const pollInterval = time.Second

// entry mirrors filestore.SnapshotEntry's JSON shape without
// importing the core package, keeping the monitor independently
// deployable against any filehubd instance.
type entry struct {
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Length      int       `json:"length"`
	AccessCount int64     `json:"access_count"`
	ExpiresAt   time.Time `json:"expires_at"`
	UploadID    string    `json:"upload_id"`
}

type counters struct {
	Overwritten int64 `json:"overwritten"`
	Evicted     int64 `json:"evicted"`
	Failed      int64 `json:"failed"`
	Deleted     int64 `json:"deleted"`
}

type runtimeStats struct {
	Goroutines      int `json:"goroutines"`
	FileDescriptors int `json:"file_descriptors"`
}

type snapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Entries     []entry      `json:"entries"`
	Counters    counters     `json:"counters"`
	Runtime     runtimeStats `json:"runtime"`
}

type snapshotMsg struct {
	snap snapshot
	err  error
}

type tickMsg time.Time

// Model is the bubbletea model for cmd/filehub-monitor.
type Model struct {
	client   *http.Client
	endpoint string

	width, height int
	cursor        int
	snap          snapshot
	lastErr       error
}

// New builds a Model polling endpoint (a filehubd base URL, e.g.
// "http://localhost:8080").
func New(endpoint string) *Model {
	return &Model{
		client:   &http.Client{Timeout: 3 * time.Second},
		endpoint: endpoint,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) fetchCmd() tea.Cmd {
	client, endpoint := m.client, m.endpoint
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/diagnostics.json", nil)
		if err != nil {
			return snapshotMsg{err: err}
		}
		resp, err := client.Do(req)
		if err != nil {
			return snapshotMsg{err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return snapshotMsg{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}

		var snap snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.snap.Entries)-1 {
				m.cursor++
			}
		case "r":
			return m, m.fetchCmd()
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd())

	case snapshotMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.snap = msg.snap
			if m.cursor >= len(m.snap.Entries) {
				m.cursor = len(m.snap.Entries) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		return m, nil
	}
	return m, nil
}
