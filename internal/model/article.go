package model

import "time"

// RawArticle is a single feed entry as delivered by the ingestion layer.
// The URL doubles as the stable identifier used for idempotent re-processing.
type RawArticle struct {
	SourceKey   string    `json:"source_key"`
	SourceName  string    `json:"source_name"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

// Classification is the stage-1 verdict on whether an article describes a
// data breach at all. It gates the more expensive extraction call.
type Classification struct {
	IsBreach   bool    `json:"is_breach"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}
