package dto

type GenerateInput struct {
	// Provider is a builtin provider name or an insight plugin name; empty uses the configured default.
	Provider string
	// Refresh bypasses the in-process cache.
	Refresh bool
}

type SourceOutput struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GenerateOutput struct {
	Provider         string         `json:"provider"`
	Summary          string         `json:"summary"`
	PeakProductivity string         `json:"peak_productivity"`
	Suggestions      []string       `json:"suggestions"`
	Motivation       string         `json:"motivation"`
	Sources          []SourceOutput `json:"sources"`
	Cached           bool           `json:"cached"`
}

type ProviderInfo struct {
	Name    string
	Kind    string
	Enabled bool
	Default bool
	Version string
	Binary  string
}

type DoctorResult struct {
	Name            string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
