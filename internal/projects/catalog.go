package projects

import (
	"context"
	"time"
)

// Catalog lists projects. The static implementation covers the current
// hand-maintained set; a store-backed one can replace it without touching
// the handler.
type Catalog interface {
	List(ctx context.Context) ([]Project, error)
	FindByID(ctx context.Context, id string) (*Project, bool)
}

// StaticCatalog serves the hardcoded project list.
type StaticCatalog struct {
	projects []Project
}

// NewStaticCatalog builds the catalog with the current portfolio entries.
func NewStaticCatalog() *StaticCatalog {
	launchedPaceCalculator := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	return &StaticCatalog{projects: []Project{
		{
			ID:          "pace-calculator",
			Name:        "Pace Calculator",
			Description: "A handy tool for runners to calculate running paces, times, and distances. Perfect for training planning and race day strategy.",
			Status:      StatusLive,
			URL:         "https://pacecalculator.greensquirrel.dev",
			ThumbnailURL: "/images/projects/pace-calculator-thumb.png",
			Screenshots: []string{
				"/images/projects/pace-calculator-1.png",
				"/images/projects/pace-calculator-2.png",
				"/images/projects/pace-calculator-3.png",
			},
			Technologies: []string{"Blazor WASM", "C#", "Azure Static Web Apps"},
			CreatedAt:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			LaunchedAt:   &launchedPaceCalculator,
			PartitionKey: PartitionKey,
		},
		{
			ID:          "hive-reader",
			Name:        "HiveReader",
			Description: "Send articles from the web directly to your Kindle for distraction-free reading. Includes Chrome extension for one-click saving.",
			Status:      StatusInDevelopment,
			URL:         "https://hive-reader.greensquirrel.dev",
			ThumbnailURL: "/images/projects/hive-reader-thumb.png",
			Screenshots: []string{
				"/images/projects/hive-reader-1.png",
				"/images/projects/hive-reader-2.png",
			},
			Technologies: []string{"Blazor WASM", "Azure Functions", "Chrome Extension", "Kindle API"},
			CreatedAt:    time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
			PartitionKey: PartitionKey,
			HasExtension: true,
			// Placeholder until the extension is published to the store.
			ExtensionURL: "#",
		},
	}}
}

func (c *StaticCatalog) List(_ context.Context) ([]Project, error) {
	out := make([]Project, len(c.projects))
	copy(out, c.projects)
	return out, nil
}

func (c *StaticCatalog) FindByID(_ context.Context, id string) (*Project, bool) {
	for i := range c.projects {
		if c.projects[i].ID == id {
			p := c.projects[i]
			return &p, true
		}
	}
	return nil, false
}

var _ Catalog = (*StaticCatalog)(nil)
