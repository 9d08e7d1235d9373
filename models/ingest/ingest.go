package ingest

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Running State = "Running"
	Done    State = "Done"
	Error   State = "Error"
)

// IngestRequest tracks one knockout file load.
type IngestRequest struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Collection string    `json:"collection"`
	State      State     `json:"state"`
	Message    string    `json:"message"`

	Lines          int    `json:"lines"`
	Individuals    int    `json:"individuals"`
	Skipped        int    `json:"skipped"`
	RecordsIndexed uint64 `json:"recordsIndexed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Finished reports whether the request reached a terminal state.
func (r IngestRequest) Finished() bool {
	return r.State == Done || r.State == Error
}

type IngestResponseDTO struct {
	Id       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	State    State     `json:"state"`
	Message  string    `json:"message"`
}

type IngestStatsDTO struct {
	States         map[State]int `json:"states"`
	RecordsIndexed uint64        `json:"recordsIndexed"`
}
