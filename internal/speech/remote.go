package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RemoteConfig controls the remote TTS engine.
type RemoteConfig struct {
	// Endpoint is the synthesis HTTP endpoint. POST, JSON body, audio bytes back.
	Endpoint string
	APIKey   string
	Voice    string

	// RequestTimeout bounds a single synthesis round-trip.
	RequestTimeout time.Duration
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	out := c
	if out.Voice == "" {
		out.Voice = "Kore"
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = 10 * time.Second
	}
	return out
}

// RemoteEngine synthesizes announcements via an HTTP TTS service and hands
// the audio to a playback sink.
//
// Failure policy: every error path is logged and swallowed. Callers never
// observe a speech failure; the call flow is not allowed to depend on audio.
type RemoteEngine struct {
	cfg   RemoteConfig
	httpc *http.Client
	log   *slog.Logger

	// sink receives synthesized audio. Defaults to io.Discard since real
	// playback is out of scope for the console backend.
	sink io.Writer

	mu       sync.Mutex
	inFlight map[*utterance]struct{}
}

// NewRemoteEngine builds a remote engine. A missing API key is not an error
// here: Speak degrades to a logged no-op, matching the graceful-degradation
// contract.
func NewRemoteEngine(cfg RemoteConfig, log *slog.Logger) *RemoteEngine {
	cfg = cfg.withDefaults()
	return &RemoteEngine{
		cfg:      cfg,
		httpc:    &http.Client{Timeout: cfg.RequestTimeout},
		log:      log,
		sink:     io.Discard,
		inFlight: map[*utterance]struct{}{},
	}
}

type synthesisRequest struct {
	Text    string `json:"text"`
	Voice   string `json:"voice"`
	Purpose string `json:"purpose"`
}

func (e *RemoteEngine) Speak(text string, purpose Purpose) Utterance {
	if e.cfg.APIKey == "" || e.cfg.Endpoint == "" {
		e.log.Error("speech credentials missing, skipping announcement", "purpose", string(purpose))
		return noopUtterance{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	u := newUtterance(cancel)

	e.mu.Lock()
	e.inFlight[u] = struct{}{}
	e.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			e.mu.Lock()
			delete(e.inFlight, u)
			e.mu.Unlock()
		}()
		if err := e.synthesize(ctx, text, purpose); err != nil {
			e.log.Error("speech synthesis failed", "purpose", string(purpose), "err", err)
		}
	}()

	return u
}

func (e *RemoteEngine) synthesize(ctx context.Context, text string, purpose Purpose) error {
	body, err := json.Marshal(synthesisRequest{Text: text, Voice: e.cfg.Voice, Purpose: string(purpose)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("synthesis endpoint returned %d", resp.StatusCode)
	}

	// "Playback" is streaming the audio into the sink; the console backend
	// has no audio device.
	_, err = io.Copy(e.sink, resp.Body)
	return err
}

// Stop cancels every in-flight utterance. Idempotent.
func (e *RemoteEngine) Stop() {
	e.mu.Lock()
	handles := make([]*utterance, 0, len(e.inFlight))
	for u := range e.inFlight {
		handles = append(handles, u)
	}
	e.mu.Unlock()

	for _, u := range handles {
		u.Cancel()
	}
}
