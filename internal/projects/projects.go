// Package projects serves the portfolio project catalog.
package projects

import "time"

// PartitionKey is the fixed logical partition projects live under.
const PartitionKey = "project"

// Status describes where a project is in its lifecycle.
type Status string

const (
	StatusComingSoon    Status = "ComingSoon"
	StatusInDevelopment Status = "InDevelopment"
	StatusLive          Status = "Live"
)

// Project is a single portfolio entry.
type Project struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Screenshots  []string   `json:"screenshots"`
	Technologies []string   `json:"technologies"`
	CreatedAt    time.Time  `json:"createdAt"`
	LaunchedAt   *time.Time `json:"launchedAt,omitempty"`
	PartitionKey string     `json:"partitionKey"`
	HasExtension bool       `json:"hasExtension"`
	ExtensionURL string     `json:"extensionUrl,omitempty"`
}
