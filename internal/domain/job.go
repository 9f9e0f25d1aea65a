package domain

type JobStatus string

const (
	JobStatusPending      JobStatus = "pending"
	JobStatusQueued       JobStatus = "queued"
	JobStatusCreated      JobStatus = "created"
	JobStatusRunning      JobStatus = "running"
	JobStatusInterrupting JobStatus = "interrupting"
	JobStatusInterrupted  JobStatus = "interrupted"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusFailed       JobStatus = "failed"
	JobStatusCanceled     JobStatus = "canceled"
)

type MediaMetadata struct {
	Channel  string  `json:"channel"`
	Title    string  `json:"title"`
	Id       string  `json:"id"`
	Duration float64 `json:"duration"`
}

type Media struct {
	Source   string        `json:"source"`
	Metadata MediaMetadata `json:"metadata"`
}

// Artifact tags a finished conversion job exposes; values are artifact
// ids to be fetched from the artifact endpoint.
const (
	ArtifactTagInstrumental = "Instrumental"
	ArtifactTagSubtitles    = "subtitles"
)

// JobInfo is the progress snapshot pushed on the job namespace.
type JobInfo struct {
	Jid          string            `json:"jid"`
	CreatedAt    int64             `json:"created_at"`
	StartedAt    *int64            `json:"started_at"`
	FinishedAt   *int64            `json:"finished_at"`
	Type         string            `json:"type"`
	Media        Media             `json:"media"`
	Status       JobStatus         `json:"status"`
	Message      string            `json:"message"`
	ArtifactTags map[string]string `json:"artifact_tags"`
}

// IsRunning reports whether the job may still produce artifacts. A job
// that is no longer running and has no artifacts has failed for good.
func (j JobInfo) IsRunning() bool {
	switch j.Status {
	case JobStatusPending, JobStatusQueued, JobStatusCreated, JobStatusRunning, JobStatusInterrupting:
		return true
	}
	return false
}
