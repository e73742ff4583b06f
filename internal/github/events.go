package github

import (
	"time"

	json "github.com/goccy/go-json"
)

// RawEvent is one record from the repo events feed, payload left undecoded.
// The feed returns newest-first; callers that care about arrival order must
// reverse before processing.
type RawEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

type Actor struct {
	Login string `json:"login"`
}

// PushPayload is the payload of a PushEvent.
type PushPayload struct {
	Ref     string   `json:"ref"`
	Commits []Commit `json:"commits"`
}

type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// IssuesPayload covers IssuesEvent; PullRequestPayload covers
// PullRequestEvent. Both nest the subject object under its own key.
type IssuesPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"issue"`
}

type PullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
}

type ForkPayload struct {
	Forkee struct {
		HTMLURL string `json:"html_url"`
	} `json:"forkee"`
}

// RefPayload covers CreateEvent and DeleteEvent.
type RefPayload struct {
	RefType     string `json:"ref_type"`
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

// ActionPayload is the fallback shape for any payload carrying an action.
type ActionPayload struct {
	Action string `json:"action"`
}
