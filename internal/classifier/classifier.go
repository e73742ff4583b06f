// Package classifier turns raw feed records into the normalized events kept
// in the log. Classification never fails: malformed or partial payloads
// degrade to empty fields or the unhandled fallback rather than erroring.
package classifier

import (
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"repowatch.app/watcher/common/id"
	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/github"
)

const tagRefPrefix = "refs/tags/"

// Classify builds the log record for one raw event. RecordedAt is the local
// capture time, independent of the upstream timestamp.
func Classify(repo domain.WatchKey, raw github.RawEvent) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		ID:                id.New(),
		Repo:              repo,
		SourceEventID:     raw.ID,
		Type:              domain.EventType(raw.Type),
		Actor:             raw.Actor.Login,
		Detail:            classifyPayload(raw),
		UpstreamCreatedAt: raw.CreatedAt,
		RecordedAt:        time.Now().UTC(),
	}
}

func classifyPayload(raw github.RawEvent) domain.Detail {
	switch domain.EventType(raw.Type) {
	case domain.EventTypePush:
		return classifyPush(raw.Payload)
	case domain.EventTypeIssues:
		var p github.IssuesPayload
		decode(raw.Payload, &p)
		return domain.IssueDetail{Action: p.Action, Title: p.Issue.Title, URL: p.Issue.HTMLURL}
	case domain.EventTypePullRequest:
		var p github.PullRequestPayload
		decode(raw.Payload, &p)
		return domain.PullRequestDetail{Action: p.Action, Title: p.PullRequest.Title, URL: p.PullRequest.HTMLURL}
	case domain.EventTypeWatch:
		var p github.ActionPayload
		decode(raw.Payload, &p)
		return domain.WatchDetail{Action: p.Action}
	case domain.EventTypeFork:
		var p github.ForkPayload
		decode(raw.Payload, &p)
		return domain.ForkDetail{ForkURL: p.Forkee.HTMLURL}
	case domain.EventTypeCreate:
		var p github.RefPayload
		decode(raw.Payload, &p)
		return domain.CreateDetail{RefType: p.RefType, Ref: p.Ref, Description: p.Description}
	case domain.EventTypeDelete:
		var p github.RefPayload
		decode(raw.Payload, &p)
		return domain.DeleteDetail{RefType: p.RefType, Ref: p.Ref}
	default:
		var p github.ActionPayload
		decode(raw.Payload, &p)
		if p.Action != "" {
			return domain.GenericActionDetail{Action: p.Action}
		}
		return domain.UnhandledDetail{Unhandled: true, PayloadKeys: payloadKeys(raw.Payload)}
	}
}

func classifyPush(payload json.RawMessage) domain.Detail {
	var p github.PushPayload
	decode(payload, &p)

	if strings.HasPrefix(p.Ref, tagRefPrefix) {
		return domain.TagPushDetail{
			Action:      domain.ActionTagPushed,
			Tag:         refName(p.Ref),
			CommitCount: len(p.Commits),
		}
	}

	if len(p.Commits) == 0 {
		return domain.EmptyPushDetail{
			Action: domain.ActionPushedNoCommits,
			Ref:    p.Ref,
			Note:   "force push or ref update with no new commits",
		}
	}

	messages := make([]string, 0, len(p.Commits))
	for _, c := range p.Commits {
		messages = append(messages, firstLine(c.Message))
	}
	return domain.CommitPushDetail{
		Action:      domain.ActionCommitsPushed,
		Branch:      refName(p.Ref),
		CommitCount: len(p.Commits),
		Messages:    messages,
	}
}

// refName returns the final path segment of a ref, e.g. "refs/heads/dev"
// yields "dev".
func refName(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

func payloadKeys(payload json.RawMessage) []string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(payload, &m); err != nil || len(m) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decode ignores malformed payloads on purpose; the target keeps its zero
// value and classification falls through to defaults.
func decode(payload json.RawMessage, v any) {
	if len(payload) == 0 {
		return
	}
	_ = json.Unmarshal(payload, v)
}
