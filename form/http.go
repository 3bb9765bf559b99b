// Package form submits a proof-of-work gated HTML form over HTTP.
package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spacemeshos/powgate/logging"
)

var (
	ErrRejected      = errors.New("form submission rejected")
	ErrMissingAction = errors.New("form action URL is not set")
)

// HTTP posts the form as application/x-www-form-urlencoded.
type HTTP struct {
	cfg    Config
	client *http.Client

	submitEnabled atomic.Bool
	submissions   atomic.Int64
}

func NewHTTP(cfg Config, client *http.Client) (*HTTP, error) {
	if cfg.Action == "" {
		return nil, ErrMissingAction
	}
	if _, err := url.ParseRequestURI(cfg.Action); err != nil {
		return nil, fmt.Errorf("parsing form action: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	f := &HTTP{cfg: cfg, client: client}
	f.submitEnabled.Store(true)
	return f, nil
}

func (f *HTTP) PreviousProof() string {
	return f.cfg.PreviousProof
}

func (f *HTTP) PreviousHash() string {
	return f.cfg.PreviousHash
}

func (f *HTTP) SetSubmitEnabled(enabled bool) {
	f.submitEnabled.Store(enabled)
}

func (f *HTTP) SubmitEnabled() bool {
	return f.submitEnabled.Load()
}

// Values returns the form data sent along with proof.
func (f *HTTP) Values(proof string) url.Values {
	values := url.Values{}
	for name, value := range f.cfg.Fields {
		values.Set(name, value)
	}
	values.Set(f.cfg.PreviousProofField, f.cfg.PreviousProof)
	values.Set(f.cfg.PreviousHashField, f.cfg.PreviousHash)
	values.Set(f.cfg.ProofField, proof)
	return values
}

func (f *HTTP) Submit(ctx context.Context, proof string) error {
	logger := logging.FromContext(ctx)
	if !f.SubmitEnabled() {
		logger.Debug("submitting while the submit control is disabled")
	}

	body := f.Values(proof).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Action, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting form to %s: %w", f.cfg.Action, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	f.submissions.Add(1)
	logger.Info("form submitted", zap.String("action", f.cfg.Action), zap.Int("status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}
	return nil
}

// Submissions returns the number of requests sent so far.
func (f *HTTP) Submissions() int64 {
	return f.submissions.Load()
}
