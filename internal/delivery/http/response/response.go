package response

import (
	"time"

	"github.com/user/linkcheck-service/internal/entity"
)

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type LinkCacheStatusResponse struct {
	URL    string `json:"url"`
	Passed bool   `json:"passed"`
	Size   int64  `json:"size"`
}

type FlushResponse struct {
	Flushed bool `json:"flushed"`
}

// SiteResponse is a DTO for one site, with live counters.
type SiteResponse struct {
	Location     string            `json:"location"`
	Properties   map[string]string `json:"properties"`
	Counters     entity.Counters   `json:"counters"`
	ActiveBroken int64             `json:"active_broken"`
}

type PurgeResponse struct {
	Results []entity.PurgeResult `json:"results"`
}

type ArchiveResponse struct {
	Archived int `json:"archived"`
}

type SnapshotResponse struct {
	ID           int64           `json:"id"`
	TakenAt      time.Time       `json:"taken_at"`
	Location     string          `json:"location"`
	Counters     entity.Counters `json:"counters"`
	ActiveBroken int64           `json:"active_broken"`
	LastChecked  *time.Time      `json:"last_checked,omitempty"`
}
