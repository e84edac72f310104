package app

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"tabtime/internal/model"
	"tabtime/internal/nativemsg"
	"tabtime/internal/testutil"
)

// extension answers host requests for a single focused tab and hands
// everything else to the test.
type extension struct {
	t       *testing.T
	wmu     sync.Mutex
	toHost  *io.PipeWriter
	replies chan nativemsg.Envelope
	notices chan nativemsg.Envelope
}

func (e *extension) send(env nativemsg.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		e.t.Errorf("Marshal() error = %v", err)
		return
	}
	e.wmu.Lock()
	defer e.wmu.Unlock()
	if err := nativemsg.WriteMessage(e.toHost, data); err != nil {
		e.t.Errorf("WriteMessage() error = %v", err)
	}
}

func (e *extension) serve(fromHost io.Reader) {
	tab := json.RawMessage(`{"tab":{"id":1,"windowId":1,"url":"https://go.dev","title":"Go","active":true,"windowFocused":true}}`)
	for {
		data, err := nativemsg.ReadMessage(fromHost)
		if err != nil {
			return
		}
		var env nativemsg.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			e.t.Errorf("Unmarshal() error = %v", err)
			return
		}
		switch env.Type {
		case nativemsg.TypeQueryActiveTab, nativemsg.TypeGetTab:
			e.send(nativemsg.Envelope{Type: nativemsg.TypeResponse, ReplyTo: env.ID, Data: tab})
		case nativemsg.TypeExtractSnippet:
			e.send(nativemsg.Envelope{Type: nativemsg.TypeResponse, ReplyTo: env.ID, Data: json.RawMessage(`{"text":"docs"}`)})
		case nativemsg.TypeResponse:
			e.replies <- env
		case nativemsg.TypeShowAPIKeyPrompt:
			e.notices <- env
		default:
			e.send(nativemsg.Envelope{Type: nativemsg.TypeResponse, ReplyTo: env.ID, Data: json.RawMessage(`{}`)})
		}
	}
}

func (e *extension) await(t *testing.T, ch chan nativemsg.Envelope) nativemsg.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for host message")
		return nativemsg.Envelope{}
	}
}

func TestApp_RunHost(t *testing.T) {
	a := newTestApp(t)
	hostIn, extOut := io.Pipe()
	extIn, hostOut := io.Pipe()
	ext := &extension{
		t:       t,
		toHost:  extOut,
		replies: make(chan nativemsg.Envelope, 4),
		notices: make(chan nativemsg.Envelope, 1),
	}
	go ext.serve(extIn)

	done := make(chan error, 1)
	go func() {
		done <- a.runHost(context.Background(), hostIn, hostOut, hostOptions{
			ids:        testutil.NewStubIDGenerator(),
			classifier: testutil.NewFakeClassifier(model.Judgment{IsProductive: true, Confidence: 0.9}),
		})
	}()
	t.Cleanup(func() { extIn.Close() })

	// No key is configured, so the host asks for one.
	ext.await(t, ext.notices)

	ext.send(nativemsg.Envelope{Type: nativemsg.TypeUpdateSettings, ID: "u1", Data: json.RawMessage(`{"settings":{"isPaused":true}}`)})
	reply := ext.await(t, ext.replies)
	if reply.ReplyTo != "u1" || reply.Error != "" {
		t.Fatalf("reply = %+v, want success for u1", reply)
	}
	var body struct {
		Settings model.Settings `json:"settings"`
	}
	if err := json.Unmarshal(reply.Data, &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !body.Settings.IsPaused {
		t.Error("reply settings not paused")
	}

	stored, err := a.settings.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !stored.IsPaused {
		t.Error("pause not persisted")
	}

	extOut.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunHost() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunHost() did not return after the extension disconnected")
	}
	if a.tracker() != nil {
		t.Error("tracker still registered after RunHost returned")
	}
}

func TestApp_RunHostCancel(t *testing.T) {
	a := newTestApp(t)
	hostIn, extOut := io.Pipe()
	extIn, hostOut := io.Pipe()
	ext := &extension{t: t, toHost: extOut, replies: make(chan nativemsg.Envelope, 4), notices: make(chan nativemsg.Envelope, 1)}
	go ext.serve(extIn)
	t.Cleanup(func() {
		extOut.Close()
		extIn.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.runHost(ctx, hostIn, hostOut, hostOptions{ids: testutil.NewStubIDGenerator()})
	}()
	ext.await(t, ext.notices)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunHost() error = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunHost() did not return after cancel")
	}
}
