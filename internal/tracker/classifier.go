package tracker

import (
	"context"

	"tabtime/internal/model"
)

// SnippetLimit caps the page text sent to the classifier, in characters.
const SnippetLimit = 500

// ClassificationRequest is the input to a Classifier.
type ClassificationRequest struct {
	URL             string
	Title           string
	DurationSeconds int64
	Snippet         string
}

// Classifier judges whether a browsing activity is productive.
type Classifier interface {
	Classify(ctx context.Context, req ClassificationRequest) (model.Judgment, error)
}

// URLFilter reports URLs that must never be classified.
type URLFilter interface {
	Ignored(url string) bool
}
