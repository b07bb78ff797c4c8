package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrMalformedInsight = errors.New("insight response is not in the expected format")

// Insight is the coaching report returned by a provider.
type Insight struct {
	Summary          string   `json:"summary"`
	PeakProductivity string   `json:"peak_productivity"`
	Suggestions      []string `json:"suggestions"`
	Motivation       string   `json:"motivation"`
}

// Source is a web page a provider grounded its answer on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Completion is the raw answer of a provider before parsing.
type Completion struct {
	Text    string
	Sources []Source
}

type Result struct {
	Insight Insight
	Sources []Source
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ParseCompletion extracts the first fenced json block of c and validates it.
func ParseCompletion(c Completion) (Result, error) {
	match := fencedJSON.FindStringSubmatch(strings.TrimSpace(c.Text))
	if len(match) < 2 || strings.TrimSpace(match[1]) == "" {
		return Result{}, fmt.Errorf("%w: no json block found", ErrMalformedInsight)
	}
	var raw struct {
		Summary          string          `json:"summary"`
		PeakProductivity string          `json:"peak_productivity"`
		Suggestions      json.RawMessage `json:"suggestions"`
		Motivation       string          `json:"motivation"`
	}
	if err := json.Unmarshal([]byte(match[1]), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedInsight, err)
	}
	var suggestions []string
	if len(raw.Suggestions) == 0 || json.Unmarshal(raw.Suggestions, &suggestions) != nil || suggestions == nil {
		return Result{}, fmt.Errorf("%w: suggestions must be an array of strings", ErrMalformedInsight)
	}
	insight := Insight{
		Summary:          strings.TrimSpace(raw.Summary),
		PeakProductivity: strings.TrimSpace(raw.PeakProductivity),
		Suggestions:      suggestions,
		Motivation:       strings.TrimSpace(raw.Motivation),
	}
	if insight.Summary == "" || insight.PeakProductivity == "" || insight.Motivation == "" {
		return Result{}, fmt.Errorf("%w: summary, peak_productivity and motivation are required", ErrMalformedInsight)
	}
	return Result{Insight: insight, Sources: FilterSources(c.Sources)}, nil
}

// FilterSources drops sources without a URI.
func FilterSources(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if strings.TrimSpace(s.URI) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
