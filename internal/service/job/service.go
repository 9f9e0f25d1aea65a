package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/repository/connection"
)

var ErrJobNotFound = errors.New("job not found")

// WildcardKey subscribes a connection to progress of every job.
const WildcardKey = "*"

type iConnRepo interface {
	Add(conn *websocket.Conn, key string) error
	Remove(conn *websocket.Conn) (string, error)
	GetConns(key string) []*websocket.Conn
}

// service keeps the latest known progress per job and fans updates out
// to subscribed connections. Progress is reported by the conversion
// backend and held in memory only; a restart starts empty.
type service struct {
	connRepo iConnRepo
	logger   *slog.Logger

	mu   sync.RWMutex
	jobs map[string]domain.JobInfo
}

func NewService(connRepo iConnRepo, logger *slog.Logger) *service {
	return &service{
		connRepo: connRepo,
		logger:   logger,
		jobs:     make(map[string]domain.JobInfo),
	}
}

type JoinParams struct {
	Conn  *websocket.Conn
	JobId string
}

// Join subscribes the connection and returns the progress snapshots to
// replay to it. Unknown non-wildcard job ids are a resource error.
func (s *service) Join(params *JoinParams) ([]domain.JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest []domain.JobInfo
	if params.JobId == WildcardKey {
		latest = make([]domain.JobInfo, 0, len(s.jobs))
		for _, info := range s.jobs {
			latest = append(latest, info)
		}
		sort.Slice(latest, func(i, j int) bool {
			return latest[i].CreatedAt < latest[j].CreatedAt
		})
	} else {
		info, ok := s.jobs[params.JobId]
		if !ok {
			return nil, ErrJobNotFound
		}
		latest = []domain.JobInfo{info}
	}

	// a re-join on the same key is benign, the conn stays subscribed
	if err := s.connRepo.Add(params.Conn, params.JobId); err != nil && err != connection.ErrAlreadyExists {
		return nil, fmt.Errorf("failed to add conn: %w", err)
	}

	return latest, nil
}

func (s *service) Leave(conn *websocket.Conn) {
	s.connRepo.Remove(conn)
}

type UpdateProgressResponse struct {
	Conns []*websocket.Conn
}

// UpdateProgress stores the snapshot and returns the connections that
// watch this job, including wildcard subscribers.
func (s *service) UpdateProgress(info domain.JobInfo) UpdateProgressResponse {
	s.mu.Lock()
	s.jobs[info.Jid] = info
	s.mu.Unlock()

	conns := s.connRepo.GetConns(info.Jid)
	conns = append(conns, s.connRepo.GetConns(WildcardKey)...)

	return UpdateProgressResponse{Conns: conns}
}
