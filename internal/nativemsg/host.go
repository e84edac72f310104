package nativemsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tabtime/internal/activity"
	"tabtime/internal/model"
	"tabtime/internal/tracker"
)

// DefaultRequestTimeout bounds how long a host request waits for the extension.
const DefaultRequestTimeout = 10 * time.Second

var (
	// ErrRequestTimeout is returned when the extension does not answer in time.
	ErrRequestTimeout = errors.New("native messaging request timed out")

	// ErrHostClosed is returned for requests made after the pipe closed.
	ErrHostClosed = errors.New("native messaging host closed")
)

// RemoteError is an error reported by the extension in a RESPONSE.
type RemoteError struct {
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("extension error for %s: %s", e.Type, e.Message)
}

// EventSink receives decoded browser events.
type EventSink interface {
	Post(ev tracker.Event)
}

// Dashboard answers the extension's popup requests.
type Dashboard interface {
	Stats(ctx context.Context) ([]model.ActivityRecord, error)
	Summary(ctx context.Context) (activity.Summary, error)
	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
	CheckAPIKey(ctx context.Context) (bool, error)
	ClearLog(ctx context.Context) error
}

// Host speaks the native messaging protocol over a reader/writer pair
// (stdin/stdout when launched by the browser). It is the tracker's Browser,
// Page and Notifier: each call is a request correlated with the extension's
// RESPONSE by id.
type Host struct {
	r       io.Reader
	w       io.Writer
	ids     tracker.IDGenerator
	logger  tracker.Logger
	timeout time.Duration

	wmu sync.Mutex

	pmu     sync.Mutex
	pending map[string]chan Response

	done     chan struct{}
	doneOnce sync.Once
}

var (
	_ tracker.Browser  = (*Host)(nil)
	_ tracker.Page     = (*Host)(nil)
	_ tracker.Notifier = (*Host)(nil)
)

// Option configures a Host.
type Option func(*Host)

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// NewHost creates a Host reading frames from r and writing frames to w.
func NewHost(r io.Reader, w io.Writer, ids tracker.IDGenerator, logger tracker.Logger, opts ...Option) *Host {
	if ids == nil {
		ids = tracker.UUIDGenerator{}
	}
	if logger == nil {
		logger = tracker.NewNopLogger()
	}
	h := &Host{
		r:       r,
		w:       w,
		ids:     ids,
		logger:  logger,
		timeout: DefaultRequestTimeout,
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Serve reads frames until the extension closes the pipe, the stream is
// corrupt, or ctx is cancelled between frames. Events go to sink; popup
// requests are answered from dash on their own goroutines. It returns nil
// when the pipe closes cleanly.
func (h *Host) Serve(ctx context.Context, sink EventSink, dash Dashboard) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	// Close before waiting so requests blocked on the pipe fail fast.
	defer h.close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := ReadMessage(h.r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.logger.Info("extension disconnected")
				return nil
			}
			return fmt.Errorf("reading native message: %w", err)
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.logger.Warn("dropping malformed message", "error", err)
			continue
		}
		msg, err := Decode(env)
		if err != nil {
			h.logger.Warn("dropping message", "type", env.Type, "error", err)
			if env.ID != "" {
				h.reply(env.ID, nil, err)
			}
			continue
		}

		switch m := msg.(type) {
		case EventMessage:
			sink.Post(m.Event)
		case DashboardRequest:
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.answer(ctx, dash, m)
			}()
		case Response:
			h.route(m)
		}
	}
}

func (h *Host) answer(ctx context.Context, dash Dashboard, req DashboardRequest) {
	var (
		data any
		err  error
	)
	switch req.Type {
	case TypeGetStats:
		var records []model.ActivityRecord
		records, err = dash.Stats(ctx)
		data = map[string]any{"activityLog": records}
	case TypeGetSummary:
		data, err = dash.Summary(ctx)
	case TypeGetSettings:
		var s model.Settings
		s, err = dash.Settings(ctx)
		data = map[string]any{"settings": s}
	case TypeUpdateSettings:
		var s model.Settings
		s, err = dash.UpdateSettings(ctx, req.Patch)
		data = map[string]any{"settings": s}
	case TypeCheckAPIKey:
		var has bool
		has, err = dash.CheckAPIKey(ctx)
		data = map[string]any{"hasApiKey": has}
	case TypeClearData:
		err = dash.ClearLog(ctx)
		data = map[string]any{"cleared": err == nil}
	default:
		err = fmt.Errorf("unsupported request %q", req.Type)
	}
	if err != nil {
		h.logger.Warn("popup request failed", "type", req.Type, "error", err)
		data = nil
	}
	if req.ID != "" {
		h.reply(req.ID, data, err)
	}
}

func (h *Host) route(resp Response) {
	h.pmu.Lock()
	ch, ok := h.pending[resp.ReplyTo]
	delete(h.pending, resp.ReplyTo)
	h.pmu.Unlock()

	if !ok {
		h.logger.Debug("response for unknown or expired request", "replyTo", resp.ReplyTo)
		return
	}
	ch <- resp
}

func (h *Host) close() {
	h.doneOnce.Do(func() { close(h.done) })
}

// send writes one envelope. Writes are serialized.
func (h *Host) send(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", env.Type, err)
	}
	h.wmu.Lock()
	defer h.wmu.Unlock()
	return WriteMessage(h.w, data)
}

func (h *Host) reply(id string, data any, replyErr error) {
	env := Envelope{Type: TypeResponse, ReplyTo: id}
	if replyErr != nil {
		env.Error = replyErr.Error()
	} else if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			env.Error = err.Error()
		} else {
			env.Data = raw
		}
	}
	if err := h.send(env); err != nil {
		h.logger.Warn("sending reply failed", "replyTo", id, "error", err)
	}
}

// notify sends a message that expects no answer.
func (h *Host) notify(typ string, data any) error {
	env := Envelope{Type: typ}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", typ, err)
		}
		env.Data = raw
	}
	return h.send(env)
}

// request sends a message and waits for the matching RESPONSE.
func (h *Host) request(ctx context.Context, typ string, data any) (json.RawMessage, error) {
	select {
	case <-h.done:
		return nil, ErrHostClosed
	default:
	}

	env := Envelope{Type: typ, ID: h.ids.New()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", typ, err)
		}
		env.Data = raw
	}

	ch := make(chan Response, 1)
	h.pmu.Lock()
	h.pending[env.ID] = ch
	h.pmu.Unlock()
	defer func() {
		h.pmu.Lock()
		delete(h.pending, env.ID)
		h.pmu.Unlock()
	}()

	if err := h.send(env); err != nil {
		return nil, err
	}

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return nil, &RemoteError{Type: typ, Message: resp.Error}
		}
		return resp.Data, nil
	case <-timer.C:
		return nil, fmt.Errorf("%s: %w", typ, ErrRequestTimeout)
	case <-h.done:
		return nil, ErrHostClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
