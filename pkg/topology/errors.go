package topology

import (
	"errors"
	"fmt"
)

var (
	ErrTopologyNotFound = errors.New("topology not found")
	ErrNoActiveTopology = errors.New("no active topology")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrLinkNotFound     = errors.New("link not found")
	ErrInvalidTopology  = errors.New("invalid topology")
	ErrInvalidBandwidth = errors.New("invalid bandwidth sample")
	ErrNoTopologySource = errors.New("no topology source configured")
)

// Error provides structured information about a failed topology operation.
type Error struct {
	Op     string // operation, e.g. "Activate", "ApplyBandwidth"
	Entity string // "topology", "device", "link"
	ID     string
	Cause  error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(op, entity, id string, cause error) error {
	return &Error{Op: op, Entity: entity, ID: id, Cause: cause}
}

// IssueKind classifies a record the index refused to use
type IssueKind string

const (
	IssueDuplicateDevice IssueKind = "duplicate_device"
	IssueDuplicatePort   IssueKind = "duplicate_port"
	IssueDuplicateLink   IssueKind = "duplicate_link"
	IssueOrphanPort      IssueKind = "orphan_port"
	IssueDanglingLink    IssueKind = "dangling_link"
	IssueSelfLoop        IssueKind = "self_loop"
)

// Issue describes one ignored record. Issues never abort an index build.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	ID      string    `json:"id"`
	Message string    `json:"message"`
}
