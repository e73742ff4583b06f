package domain

import (
	"time"
)

// EventType is the upstream event type tag, e.g. "PushEvent".
type EventType string

const (
	EventTypePush        EventType = "PushEvent"
	EventTypeIssues      EventType = "IssuesEvent"
	EventTypePullRequest EventType = "PullRequestEvent"
	EventTypeWatch       EventType = "WatchEvent"
	EventTypeFork        EventType = "ForkEvent"
	EventTypeCreate      EventType = "CreateEvent"
	EventTypeDelete      EventType = "DeleteEvent"
)

// ClassifiedEvent is the normalized record kept in the event log.
type ClassifiedEvent struct {
	ID                int64     `json:"id,string"`
	Repo              WatchKey  `json:"repo"`
	SourceEventID     string    `json:"source_event_id"`
	Type              EventType `json:"type"`
	Actor             string    `json:"actor"`
	Detail            Detail    `json:"details"`
	UpstreamCreatedAt time.Time `json:"created_at"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// Detail is the type-specific half of a classified event. The concrete
// variant is fixed by the event type at classification time; consumers
// switch on it rather than digging through an open-ended map.
type Detail interface {
	detail()
}

type TagPushDetail struct {
	Action      string `json:"action"`
	Tag         string `json:"tag"`
	CommitCount int    `json:"commit_count"`
}

type CommitPushDetail struct {
	Action      string   `json:"action"`
	Branch      string   `json:"branch"`
	CommitCount int      `json:"commit_count"`
	Messages    []string `json:"messages"`
}

// EmptyPushDetail covers force pushes and ref updates that carry no new
// commits.
type EmptyPushDetail struct {
	Action string `json:"action"`
	Ref    string `json:"ref"`
	Note   string `json:"note"`
}

type IssueDetail struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

type PullRequestDetail struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

type WatchDetail struct {
	Action string `json:"action"`
}

type ForkDetail struct {
	ForkURL string `json:"fork_url"`
}

type CreateDetail struct {
	RefType     string `json:"ref_type"`
	Ref         string `json:"ref"`
	Description string `json:"description,omitempty"`
}

type DeleteDetail struct {
	RefType string `json:"ref_type"`
	Ref     string `json:"ref"`
}

// GenericActionDetail covers event types the classifier has no dedicated
// variant for but whose payload still carries an action.
type GenericActionDetail struct {
	Action string `json:"action"`
}

// UnhandledDetail records the payload keys of an event type the classifier
// knows nothing about, so new upstream types show up in the log instead of
// vanishing.
type UnhandledDetail struct {
	Unhandled   bool     `json:"unhandled"`
	PayloadKeys []string `json:"payload_keys"`
}

func (TagPushDetail) detail()       {}
func (CommitPushDetail) detail()    {}
func (EmptyPushDetail) detail()     {}
func (IssueDetail) detail()         {}
func (PullRequestDetail) detail()   {}
func (WatchDetail) detail()         {}
func (ForkDetail) detail()          {}
func (CreateDetail) detail()        {}
func (DeleteDetail) detail()        {}
func (GenericActionDetail) detail() {}
func (UnhandledDetail) detail()     {}

const (
	ActionTagPushed       = "tag-pushed"
	ActionCommitsPushed   = "commits-pushed"
	ActionPushedNoCommits = "pushed-no-commits"
)
