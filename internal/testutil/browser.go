package testutil

import (
	"context"
	"fmt"
	"sync"

	"tabtime/internal/model"
	"tabtime/internal/tracker"
)

// FakeBrowser is an in-memory single-window browser.
type FakeBrowser struct {
	mu        sync.Mutex
	tabs      map[tracker.TabID]tracker.Tab
	active    tracker.TabID
	hasActive bool
	focused   bool
	queries   int
}

var _ tracker.Browser = (*FakeBrowser)(nil)

// NewFakeBrowser creates a focused browser window with no tabs.
func NewFakeBrowser() *FakeBrowser {
	return &FakeBrowser{tabs: make(map[tracker.TabID]tracker.Tab), focused: true}
}

// OpenTab adds a tab without activating it.
func (b *FakeBrowser) OpenTab(id tracker.TabID, url, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabs[id] = tracker.Tab{ID: id, WindowID: 1, URL: url, Title: title}
}

// Activate makes id the active tab.
func (b *FakeBrowser) Activate(id tracker.TabID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active, b.hasActive = id, true
}

// Navigate changes the URL and title of a tab.
func (b *FakeBrowser) Navigate(id tracker.TabID, url, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tab := b.tabs[id]
	tab.URL, tab.Title = url, title
	b.tabs[id] = tab
}

// CloseTab removes a tab.
func (b *FakeBrowser) CloseTab(id tracker.TabID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tabs, id)
	if b.active == id {
		b.hasActive = false
	}
}

// SetFocused sets whether the browser window has focus.
func (b *FakeBrowser) SetFocused(focused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = focused
}

// ActiveQueries returns how many times ActiveTab was called.
func (b *FakeBrowser) ActiveQueries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

func (b *FakeBrowser) ActiveTab(context.Context) (tracker.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries++
	if !b.hasActive {
		return tracker.Tab{}, tracker.ErrNoActiveTab
	}
	tab, ok := b.tabs[b.active]
	if !ok {
		return tracker.Tab{}, tracker.ErrNoActiveTab
	}
	return b.view(tab), nil
}

func (b *FakeBrowser) Tab(_ context.Context, id tracker.TabID) (tracker.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tab, ok := b.tabs[id]
	if !ok {
		return tracker.Tab{}, fmt.Errorf("tab %d: %w", id, tracker.ErrTabGone)
	}
	return b.view(tab), nil
}

func (b *FakeBrowser) view(tab tracker.Tab) tracker.Tab {
	tab.Active = b.hasActive && b.active == tab.ID
	tab.WindowFocused = b.focused
	return tab
}

// ShownClarification is a prompt displayed by a FakePage.
type ShownClarification struct {
	TabID tracker.TabID
	tracker.Clarification
}

// FakePage records page interactions.
type FakePage struct {
	mu             sync.Mutex
	snippets       map[tracker.TabID]string
	snippetErr     error
	showErr        error
	activations    []tracker.TabID
	clarifications []ShownClarification
	hidden         []tracker.TabID
	credPrompts    int
}

var (
	_ tracker.Page     = (*FakePage)(nil)
	_ tracker.Notifier = (*FakePage)(nil)
)

func NewFakePage() *FakePage {
	return &FakePage{snippets: make(map[tracker.TabID]string)}
}

// SetSnippet sets the text ExtractSnippet returns for a tab.
func (p *FakePage) SetSnippet(id tracker.TabID, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snippets[id] = text
}

// FailSnippets makes ExtractSnippet return err.
func (p *FakePage) FailSnippets(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snippetErr = err
}

// FailClarifications makes ShowClarification return err.
func (p *FakePage) FailClarifications(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showErr = err
}

// Activations returns the tabs notified of activation, in order.
func (p *FakePage) Activations() []tracker.TabID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tracker.TabID(nil), p.activations...)
}

// Clarifications returns the prompts shown, in order.
func (p *FakePage) Clarifications() []ShownClarification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ShownClarification(nil), p.clarifications...)
}

// Hidden returns the tabs whose prompt the host dismissed, in order.
func (p *FakePage) Hidden() []tracker.TabID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tracker.TabID(nil), p.hidden...)
}

// CredentialPrompts returns how many times MissingCredential was called.
func (p *FakePage) CredentialPrompts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.credPrompts
}

func (p *FakePage) Activated(_ context.Context, tab tracker.TabID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activations = append(p.activations, tab)
	return nil
}

func (p *FakePage) ExtractSnippet(_ context.Context, tab tracker.TabID) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snippetErr != nil {
		return "", p.snippetErr
	}
	return p.snippets[tab], nil
}

func (p *FakePage) ShowClarification(_ context.Context, tab tracker.TabID, c tracker.Clarification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.showErr != nil {
		return p.showErr
	}
	p.clarifications = append(p.clarifications, ShownClarification{TabID: tab, Clarification: c})
	return nil
}

func (p *FakePage) HideClarification(_ context.Context, tab tracker.TabID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden = append(p.hidden, tab)
	return nil
}

func (p *FakePage) MissingCredential(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credPrompts++
	return nil
}

// FakeClassifier returns a configured judgment and records requests.
type FakeClassifier struct {
	mu       sync.Mutex
	judgment model.Judgment
	err      error
	requests []tracker.ClassificationRequest

	// OnClassify, if set, runs inside Classify before it returns.
	OnClassify func(req tracker.ClassificationRequest)
}

var _ tracker.Classifier = (*FakeClassifier)(nil)

func NewFakeClassifier(j model.Judgment) *FakeClassifier {
	return &FakeClassifier{judgment: j}
}

// Set changes the judgment and error returned from now on.
func (c *FakeClassifier) Set(j model.Judgment, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.judgment, c.err = j, err
}

// Requests returns the classification requests received, in order.
func (c *FakeClassifier) Requests() []tracker.ClassificationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tracker.ClassificationRequest(nil), c.requests...)
}

func (c *FakeClassifier) Classify(_ context.Context, req tracker.ClassificationRequest) (model.Judgment, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	j, err, hook := c.judgment, c.err, c.OnClassify
	c.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	return j, err
}
