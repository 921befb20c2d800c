package request

import (
	"time"

	"github.com/ykhdr/rainbow-table/internal/rainbow"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusNotFound   Status = "NOT_FOUND"
	StatusError      Status = "ERROR"
)

func (s Status) Done() bool {
	return s == StatusReady || s == StatusNotFound || s == StatusError
}

type Id string

type CrackRequest struct {
	ID        Id
	Target    rainbow.Digest
	CreatedAt time.Time
}

// Info is the stored state of a crack request.
type Info struct {
	ID          Id        `json:"id" bson:"_id"`
	Status      Status    `json:"status"`
	Hash        string    `json:"hash"`
	Plaintext   string    `json:"plaintext,omitempty"`
	ChainStart  string    `json:"chain_start,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	FinishedAt  time.Time `json:"finished_at"`
	ErrorReason string    `json:"error_reason,omitempty"`
}

func (r *Info) Copy() *Info {
	c := *r
	return &c
}

// Finish records the outcome of a lookup.
func (r *Info) Finish(m rainbow.Match, found bool, at time.Time) {
	r.FinishedAt = at
	if !found {
		r.Status = StatusNotFound
		return
	}
	r.Status = StatusReady
	r.Plaintext = m.Plaintext
	r.ChainStart = m.ChainStart
	r.Position = m.Position
}

func (r *Info) Fail(reason string, at time.Time) {
	r.Status = StatusError
	r.ErrorReason = reason
	r.FinishedAt = at
}
