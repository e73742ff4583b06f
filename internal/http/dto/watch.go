package dto

import "repowatch.app/watcher/internal/domain"

type SubscribeRequest struct {
	RepoURL string `json:"repoUrl" binding:"required"`
}

type SubscribeResponse struct {
	Status string `json:"status"`
	Repo   string `json:"repo"`
}

type InspectResponse struct {
	Count int                      `json:"count"`
	Data  []domain.ClassifiedEvent `json:"data"`
}

type ClearResponse struct {
	Status string `json:"status"`
}

const (
	StatusSubscribed        = "subscribed"
	StatusAlreadySubscribed = "already_subscribed"
	StatusCleared           = "cleared"
)
