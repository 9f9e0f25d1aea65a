package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/JC-comp/karaoke/internal/client/jobsync"
	"github.com/JC-comp/karaoke/internal/client/playback"
	"github.com/JC-comp/karaoke/internal/client/roomsync"
	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/domain"
)

// tickInterval drives the simulated playback clock; real surfaces push
// info at roughly this rate too.
const tickInterval = 250 * time.Millisecond

// youtube items play picture only, with no conversion job behind them;
// the simulated surface gives them a fixed length.
const defaultItemDuration = 240.0

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type roomUpdatedMsg struct {
	room domain.Room
}

type jobChangedMsg struct {
	snapshot jobsync.Snapshot
}

type bannerMsg struct {
	text string
}

type warningMsg struct {
	text string
}

type warningClearedMsg struct{}

type redrawMsg struct{}

// commandSettledMsg re-enables the command keys once the in-flight
// command's promise closes (server ack or ack timeout).
type commandSettledMsg struct{}

// iRoomChannel is the room namespace session; satisfied by
// *socket.Manager.
type iRoomChannel interface {
	Subscribe(event string, handler socket.Handler)
	OnPreJoin(f func())
	OnError(f func(message string))
	Connect(resourceKey string)
	Emit(event string, payload any) error
	Unsubscribe()
}

// iJobChannel is the job namespace session; satisfied by
// *socket.Manager.
type iJobChannel interface {
	Subscribe(event string, handler socket.Handler)
	OnPreJoin(f func())
	OnError(f func(message string))
	Connect(resourceKey string)
	Unsubscribe()
}

// App is the root bubbletea model: one karaoke room, its playlist and
// the caption surface for the playing head item.
type App struct {
	room    *roomsync.Client
	watcher *jobsync.Watcher
	engine  *playback.Engine
	surface *localSurface
	audio   *localAudio
	logger  *slog.Logger

	roomKey string
	events  chan tea.Msg

	roomState domain.Room
	job       jobsync.Snapshot
	headId    string
	cursor    int
	busy      bool
	banner    string
	warning   string
	width     int
	height    int
}

func NewApp(roomChannel iRoomChannel, jobChannel iJobChannel, fetcher jobsync.ArtifactFetcher, roomKey string, clock clockwork.Clock, logger *slog.Logger) *App {
	surface := newLocalSurface()
	audio := newLocalAudio()

	a := &App{
		room:    roomsync.NewClient(roomChannel, clock, logger),
		watcher: jobsync.NewWatcher(jobChannel, fetcher, logger),
		engine:  playback.NewEngine(surface, audio, clock, logger),
		surface: surface,
		audio:   audio,
		logger:  logger,
		roomKey: roomKey,
		events:  make(chan tea.Msg, 64),
	}

	a.room.OnUpdate(func(room domain.Room) {
		a.push(roomUpdatedMsg{room: room})
	})
	roomChannel.OnError(func(message string) {
		a.push(bannerMsg{text: message})
	})
	a.watcher.OnChange(func(snapshot jobsync.Snapshot) {
		a.push(jobChangedMsg{snapshot: snapshot})
	})
	a.engine.OnEnded(func() {
		a.room.MoveToNextItem()
	})
	a.engine.OnAutoplayBlocked(func(message string) {
		a.push(warningMsg{text: message})
	})
	a.engine.OnAutoplayCleared(func() {
		a.push(warningClearedMsg{})
	})
	surface.onStateChange = func(state playback.PlayerState) {
		a.engine.HandleStateChange(state)
		a.push(redrawMsg{})
	}

	return a
}

func (a *App) push(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

func (a *App) Init() tea.Cmd {
	a.room.Connect(a.roomKey)
	return tea.Batch(a.waitForEvent(), tickCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tickMsg:
		dt := tickInterval.Seconds()
		a.audio.Tick(dt)
		sample, ended := a.surface.Advance(dt)
		a.engine.HandleInfo(sample)
		if ended {
			a.engine.HandleStateChange(playback.StateEnded)
		}
		return a, tickCmd()

	case roomUpdatedMsg:
		a.roomState = msg.room
		a.banner = ""
		a.applyHead()
		a.engine.SetShouldPlay(msg.room.IsPlaying)
		if a.cursor >= len(msg.room.Playlist) {
			a.cursor = max(0, len(msg.room.Playlist)-1)
		}
		return a, a.waitForEvent()

	case jobChangedMsg:
		a.job = msg.snapshot
		if msg.snapshot.AudioURL != "" {
			a.audio.SetSource(msg.snapshot.AudioURL)
		}
		if info := msg.snapshot.Info; info != nil && info.Media.Metadata.Duration > 0 {
			a.surface.SetDuration(info.Media.Metadata.Duration)
		}
		return a, a.waitForEvent()

	case bannerMsg:
		a.banner = msg.text
		return a, a.waitForEvent()

	case warningMsg:
		a.warning = msg.text
		return a, a.waitForEvent()

	case warningClearedMsg:
		a.warning = ""
		return a, a.waitForEvent()

	case redrawMsg:
		return a, a.waitForEvent()

	case commandSettledMsg:
		a.busy = false
		return a, nil
	}

	return a, nil
}

// applyHead reloads the playback pipeline when the playlist head
// changes.
func (a *App) applyHead() {
	head, ok := headOf(a.roomState)
	if !ok {
		a.headId = ""
		a.surface.Load(0)
		a.job = jobsync.Snapshot{}
		return
	}
	if head.ItemId == a.headId {
		return
	}
	a.headId = head.ItemId

	switch head.Type {
	case domain.ItemTypeSchedule:
		a.surface.Load(0)
		a.audio.SetSource("")
		a.watcher.Watch(head.Identifier)
	default:
		a.surface.Load(defaultItemDuration)
		a.audio.SetSource("")
		a.job = jobsync.Snapshot{}
	}
}

func headOf(room domain.Room) (domain.PlaylistItem, bool) {
	if len(room.Playlist) == 0 {
		return domain.PlaylistItem{}, false
	}
	return room.Playlist[0], true
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		a.engine.Close()
		a.watcher.Close()
		a.room.Close()
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down", "j":
		if a.cursor < len(a.roomState.Playlist)-1 {
			a.cursor++
		}
		return a, nil
	}

	// one command in flight at a time; repeat presses are dropped
	// until its promise settles
	if a.busy {
		return a, nil
	}

	var promise <-chan struct{}
	switch msg.String() {
	case " ":
		promise = a.room.SetPlay(!a.roomState.IsPlaying)

	case "n":
		promise = a.room.MoveToNextItem()

	case "f":
		if item, ok := a.selected(); ok {
			promise = a.room.MoveItemToTop(item)
		}

	case "x":
		if item, ok := a.selected(); ok {
			promise = a.room.DeletePlaylistItem(item)
		}

	case "enter":
		if item, ok := a.selected(); ok {
			promise = a.room.MoveToItem(item)
		}
	}
	if promise == nil {
		return a, nil
	}

	a.busy = true
	return a, func() tea.Msg {
		<-promise
		return commandSettledMsg{}
	}
}

func (a *App) selected() (domain.PlaylistItem, bool) {
	if a.cursor < 0 || a.cursor >= len(a.roomState.Playlist) {
		return domain.PlaylistItem{}, false
	}
	return a.roomState.Playlist[a.cursor], true
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(a.renderPlaylist())
	b.WriteString("\n")
	b.WriteString(a.renderCaptions())
	b.WriteString("\n")

	if a.banner != "" {
		b.WriteString(bannerStyle.Render(a.banner))
		b.WriteString("\n")
	}
	if a.warning != "" {
		b.WriteString(warningStyle.Render(a.warning))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space play/pause · enter jump · f front · x remove · n next · q quit"))
	return b.String()
}

func (a *App) renderHeader() string {
	name := a.roomState.RoomName
	if name == "" {
		name = a.roomKey
	}

	state := pausedStyle.Render("⏸ paused")
	if a.roomState.IsPlaying {
		state = playingStyle.Render("▶ playing")
	}
	if a.busy {
		state += statusStyle.Render(" …")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("KARAOKE ▸ "+name),
		statusStyle.Render(fmt.Sprintf("  v%d  ", a.roomState.Version)),
		state,
		statusStyle.Render(fmt.Sprintf("  %s / %s", formatClock(a.surface.Position()), formatClock(a.engine.CurrentTime()))),
	)
}

func (a *App) renderPlaylist() string {
	if len(a.roomState.Playlist) == 0 {
		return statusStyle.Render("  playlist is empty")
	}

	var b strings.Builder
	for i, item := range a.roomState.Playlist {
		prefix := "  "
		if i == a.cursor {
			prefix = cursorStyle.Render("> ")
		}

		title := item.Title
		if title == "" {
			title = item.Identifier
		}
		if item.Artist != "" {
			title = item.Artist + " - " + title
		}

		line := itemStyle.Render(title)
		if i == 0 {
			line = headItemStyle.Render("♪ " + title)
		}
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

func (a *App) renderCaptions() string {
	if a.job.Failure != "" {
		return captionBoxStyle.Render(bannerStyle.Render(a.job.Failure))
	}

	active := playback.ActiveCues(a.job.Cues, a.engine.CurrentTime())
	if len(active) == 0 {
		return captionBoxStyle.Render(statusStyle.Render("♪ ♪ ♪"))
	}

	lines := make([]string, 0, len(active))
	for _, cue := range active {
		lines = append(lines, renderCueLine(cue))
	}
	return captionBoxStyle.Render(strings.Join(lines, "\n"))
}

// renderCueLine paints each word in two segments, the sung fraction
// bright and the rest dim, which is the terminal rendition of a
// fractional highlight width.
func renderCueLine(cue playback.RenderedCue) string {
	parts := make([]string, 0, len(cue.Words))
	for _, word := range cue.Words {
		runes := []rune(word.Text)
		split := int(word.Progress * float64(len(runes)))
		if split > len(runes) {
			split = len(runes)
		}
		parts = append(parts, wordSungStyle.Render(string(runes[:split]))+wordUnsungStyle.Render(string(runes[split:])))
	}
	return strings.Join(parts, " ")
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
