package jobsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/domain"
)

type iChannel interface {
	Subscribe(event string, handler socket.Handler)
	OnPreJoin(f func())
	OnError(f func(message string))
	Connect(resourceKey string)
	Unsubscribe()
}

// Snapshot is the watcher's resolved view of a conversion job: the
// latest progress report plus whatever playable artifacts it has
// produced so far. Failure is a terminal message when the job can no
// longer deliver audio.
type Snapshot struct {
	Info     *domain.JobInfo
	AudioURL string
	Cues     []domain.Cue
	Failure  string
}

// VideoId extracts the youtube video id from the job's media source.
func (s Snapshot) VideoId() (string, error) {
	if s.Info == nil {
		return "", errors.New("no job info yet")
	}
	u, err := url.Parse(s.Info.Media.Source)
	if err != nil {
		return "", fmt.Errorf("failed to parse media source: %w", err)
	}
	id := u.Query().Get("v")
	if id == "" {
		return "", errors.New("media source has no video id")
	}
	return id, nil
}

// scheduled items have no known duration before conversion finishes,
// so placeholder cues cover a generous fixed window.
const placeholderCueEnd = 60 * 15

func placeholderCue(text string) domain.Cue {
	return domain.Cue{
		Start:    0,
		End:      placeholderCueEnd,
		AlignX:   domain.AlignXCenter,
		AlignY:   domain.AlignYBottom,
		Y:        0.9 / 15 * 0.33,
		FontSize: 0.9 / 15,
		Words:    []domain.Word{{Word: text}},
	}
}

// Watcher follows one conversion job on the job namespace and resolves
// its artifacts into a playable snapshot: the instrumental track URL
// and the parsed subtitle cues. While the job is still producing, a
// placeholder cue stands in for the lyrics.
type Watcher struct {
	channel iChannel
	fetcher ArtifactFetcher
	logger  *slog.Logger

	mu               sync.Mutex
	snapshot         Snapshot
	fetchedSubtitles string

	onChange func(Snapshot)
}

func NewWatcher(channel iChannel, fetcher ArtifactFetcher, logger *slog.Logger) *Watcher {
	w := &Watcher{
		channel: channel,
		fetcher: fetcher,
		logger:  logger,
	}
	w.snapshot.Cues = []domain.Cue{placeholderCue("Generating lyrics...")}

	channel.OnPreJoin(w.reset)
	channel.OnError(w.handleError)
	channel.Subscribe("progress", w.handleProgress)

	return w
}

// OnChange registers a callback invoked with the updated snapshot
// after every progress report, artifact resolution or error. Must be
// set before Watch.
func (w *Watcher) OnChange(f func(Snapshot)) {
	w.onChange = f
}

// Watch subscribes to the job; snapshots arrive asynchronously.
func (w *Watcher) Watch(jobId string) {
	w.channel.Connect(jobId)
}

func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

func (w *Watcher) reset() {
	w.mu.Lock()
	w.snapshot = Snapshot{
		Cues: []domain.Cue{placeholderCue("Generating lyrics...")},
	}
	w.fetchedSubtitles = ""
	w.mu.Unlock()
	w.notify()
}

func (w *Watcher) handleError(message string) {
	w.mu.Lock()
	w.snapshot.Failure = message
	w.snapshot.Info = nil
	w.mu.Unlock()
	w.notify()
}

func (w *Watcher) handleProgress(payload json.RawMessage) {
	var info domain.JobInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		w.logger.Debug("failed to decode job progress", "error", err)
		return
	}

	w.mu.Lock()
	w.snapshot.Info = &info
	w.snapshot.Failure = ""

	if artifactId := info.ArtifactTags[domain.ArtifactTagInstrumental]; artifactId != "" {
		w.snapshot.AudioURL = w.fetcher.ArtifactURL(info.Jid, artifactId)
	} else if !info.IsRunning() {
		w.snapshot.Failure = "Conversion failed"
	}

	var fetchSubtitles string
	if artifactId := info.ArtifactTags[domain.ArtifactTagSubtitles]; artifactId != "" {
		if artifactId != w.fetchedSubtitles {
			w.fetchedSubtitles = artifactId
			fetchSubtitles = artifactId
		}
	} else if !info.IsRunning() {
		w.snapshot.Cues = []domain.Cue{placeholderCue("Failed to generate lyrics")}
	}
	jid := info.Jid
	w.mu.Unlock()

	w.notify()

	if fetchSubtitles != "" {
		go w.fetchCues(jid, fetchSubtitles)
	}
}

func (w *Watcher) fetchCues(jobId, artifactId string) {
	body, err := w.fetcher.Fetch(context.Background(), jobId, artifactId)
	if err != nil {
		w.logger.Debug("failed to fetch subtitles", "job_id", jobId, "error", err)
		w.setFailure(err.Error())
		return
	}

	var cues []domain.Cue
	if err := json.Unmarshal([]byte(body), &cues); err != nil {
		w.logger.Debug("failed to parse subtitles", "job_id", jobId, "error", err)
		w.setFailure("Invalid subtitle data")
		return
	}

	w.mu.Lock()
	w.snapshot.Cues = cues
	w.mu.Unlock()
	w.notify()
}

func (w *Watcher) setFailure(message string) {
	w.mu.Lock()
	w.snapshot.Failure = message
	w.mu.Unlock()
	w.notify()
}

func (w *Watcher) notify() {
	if w.onChange == nil {
		return
	}
	w.onChange(w.Snapshot())
}

// Close tears the job subscription down.
func (w *Watcher) Close() {
	w.channel.Unsubscribe()
}
