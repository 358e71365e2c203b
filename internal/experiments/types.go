package experiments

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindUser  Kind = "user"
	KindGuild Kind = "guild"
)

type Treatment struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type Experiment struct {
	Kind       Kind        `json:"kind"`
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	File       string      `json:"file"`
	Treatments []Treatment `json:"treatments"`
}

type File struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// Build is one snapshot of the client as published by the builds API.
type Build struct {
	ReleaseChannels map[string]string `json:"release_channels"`
	BuildHash       string            `json:"build_hash"`
	GlobalEnv       map[string]any    `json:"GLOBAL_ENV"`
	BuildDate       string            `json:"build_date"`
	BuildNumber     int               `json:"build_number"`
	DBCreatedAt     string            `json:"db_created_at"`
	DBUpdatedAt     string            `json:"db_updated_at"`
	Environment     string            `json:"environment"`
	Experiments     []Experiment      `json:"experiments"`
	Files           []File            `json:"files"`
}

var titleCaser = cases.Title(language.Und)

// KindTitle returns the display form of a kind, e.g. "User".
func KindTitle(k Kind) string {
	return titleCaser.String(string(k))
}
