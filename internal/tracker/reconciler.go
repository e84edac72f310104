package tracker

import (
	"context"
	"errors"
	"math"
	"time"

	"tabtime/internal/model"
)

// DecisionSource is the reconciler's view of tracker state.
type DecisionSource interface {
	Pending(tab TabID, url string) (model.Judgment, bool)
	Settings() model.Settings
	OpenPrompt(ctx context.Context, p OpenPrompt)
}

// Reconciler resolves classification jobs: it prefers a cached decision,
// otherwise asks the classifier and applies the confidence policy.
type Reconciler struct {
	decisions  DecisionSource
	browser    Browser
	page       Page
	classifier Classifier
	activity   ActivityLog
	filter     URLFilter
	clock      Clock
	logger     Logger
}

// NewReconciler creates a Reconciler. filter may be nil.
func NewReconciler(decisions DecisionSource, browser Browser, page Page, classifier Classifier, activity ActivityLog, filter URLFilter, clock Clock, logger Logger) *Reconciler {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Reconciler{
		decisions:  decisions,
		browser:    browser,
		page:       page,
		classifier: classifier,
		activity:   activity,
		filter:     filter,
		clock:      clock,
		logger:     logger,
	}
}

var _ JobProcessor = (*Reconciler)(nil)

// Process resolves one job. Failures are logged and the job is dropped;
// nothing is retried.
func (r *Reconciler) Process(ctx context.Context, job Job) {
	tab, err := r.browser.Tab(ctx, job.TabID)
	if err != nil {
		if errors.Is(err, ErrTabGone) {
			r.logger.Debug("tab gone, dropping job", "tab", job.TabID)
		} else {
			r.logger.Warn("resolving tab failed, dropping job", "tab", job.TabID, "error", err)
		}
		return
	}
	if r.filter != nil && r.filter.Ignored(tab.URL) {
		r.logger.Info("ignored url, visit not recorded", "tab", job.TabID, "url", tab.URL,
			"duration_s", int64(job.Duration/time.Second))
		return
	}

	md := model.NewMetadata(tab.URL, tab.Title, job.Duration, r.clock.Now())

	if decision, ok := r.decisions.Pending(job.TabID, tab.URL); ok {
		r.logger.Debug("using cached decision", "tab", job.TabID)
		r.store(ctx, model.NewActivityRecord(decision, md, false))
		return
	}

	judgment := r.classify(ctx, job, tab)

	// A user answer may have arrived while the classifier was running.
	if decision, ok := r.decisions.Pending(job.TabID, tab.URL); ok {
		r.logger.Debug("decision arrived during classification, using it", "tab", job.TabID)
		r.store(ctx, model.NewActivityRecord(decision, md, false))
		return
	}

	settings := r.decisions.Settings()
	if judgment.Confidence < settings.ConfidenceThreshold && settings.AutoPrompt {
		c := Clarification{Suggestion: judgment, Metadata: md}
		if err := r.page.ShowClarification(ctx, job.TabID, c); err != nil {
			r.logger.Warn("showing clarification failed, storing judgment", "tab", job.TabID, "error", err)
			r.store(ctx, model.NewActivityRecord(judgment, md, false))
			return
		}
		r.decisions.OpenPrompt(ctx, OpenPrompt{
			TabID:      job.TabID,
			URL:        tab.URL,
			Title:      tab.Title,
			Suggestion: judgment,
			Duration:   job.Duration,
			ShownAt:    r.clock.Now(),
		})
		return
	}

	r.store(ctx, model.NewActivityRecord(judgment, md, false))
}

func (r *Reconciler) classify(ctx context.Context, job Job, tab Tab) model.Judgment {
	snippet, err := r.page.ExtractSnippet(ctx, job.TabID)
	if err != nil {
		r.logger.Warn("extracting page text failed", "tab", job.TabID, "error", err)
		snippet = ""
	}

	req := ClassificationRequest{
		URL:             tab.URL,
		Title:           tab.Title,
		DurationSeconds: int64(math.Round(job.Duration.Seconds())),
		Snippet:         TruncateSnippet(snippet),
	}
	started := r.clock.Now()
	judgment, err := r.classifier.Classify(ctx, req)
	if err != nil {
		r.logger.Warn("classification failed, using fallback", "tab", job.TabID, "error", err)
		return model.SentinelJudgment()
	}
	r.logger.Debug("classified", "tab", job.TabID, "productive", judgment.IsProductive,
		"confidence", judgment.Confidence, "took", r.clock.Now().Sub(started).Round(time.Millisecond))
	return judgment.Clamped()
}

func (r *Reconciler) store(ctx context.Context, rec model.ActivityRecord) {
	if err := r.activity.Append(ctx, rec); err != nil {
		r.logger.Error("storing activity failed", "url", rec.Metadata.URL, "error", err)
		return
	}
	r.logger.Info("stored activity", "url", rec.Metadata.URL, "productive", rec.IsProductive,
		"confidence", rec.Confidence, "duration_s", rec.Metadata.Duration/1000)
}

// TruncateSnippet limits s to SnippetLimit characters.
func TruncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= SnippetLimit {
		return s
	}
	return string(runes[:SnippetLimit])
}
