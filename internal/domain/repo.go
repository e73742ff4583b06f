package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidRepoURL is returned when no github.com/<owner>/<name> path can
// be found in the input.
var ErrInvalidRepoURL = errors.New("invalid github repo url")

// WatchKey is the canonical "owner/name" identifier of a watched repository.
type WatchKey string

func (k WatchKey) String() string { return string(k) }

// Owner returns the owner half of the key.
func (k WatchKey) Owner() string {
	owner, _, _ := strings.Cut(string(k), "/")
	return owner
}

// Name returns the repository half of the key.
func (k WatchKey) Name() string {
	_, name, _ := strings.Cut(string(k), "/")
	return name
}

var repoURLPattern = regexp.MustCompile(`github\.com/([\w-]+/[\w.-]+)`)

// ParseRepoURL extracts the canonical watch key from a free-form repo
// locator. It accepts anything containing a recognizable
// github.com/<owner>/<name> substring (full URLs, URLs with extra path
// segments, bare hostnames) and strips a trailing slash from the match.
func ParseRepoURL(raw string) (WatchKey, error) {
	match := repoURLPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", ErrInvalidRepoURL
	}
	key := strings.TrimSuffix(match[1], "/")
	if key == "" {
		return "", ErrInvalidRepoURL
	}
	return WatchKey(key), nil
}
