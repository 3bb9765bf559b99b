package miner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/spacemeshos/powgate/cache"
	"github.com/spacemeshos/powgate/logging"
	"github.com/spacemeshos/powgate/shared"
)

var (
	ErrMissingHashFunc = errors.New("hashing capability is not available")
	ErrSearchInFlight  = errors.New("a proof search is already in flight")
	ErrTimeout         = errors.New("proof of work took too long")

	attemptsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powgate",
		Subsystem: "miner",
		Name:      "attempts_total",
		Help:      "Number of nonces tried",
	})

	outcomesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powgate",
		Subsystem: "miner",
		Name:      "outcomes_total",
		Help:      "Number of submit attempts by outcome",
	}, []string{"outcome"})

	searchDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "powgate",
		Subsystem: "miner",
		Name:      "search_duration_seconds",
		Help:      "Time spent searching for a proof",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
	})
)

//go:generate mockgen -package mocks -destination mocks/form.go . Form

// Form is the submission the miner gates.
type Form interface {
	// SetSubmitEnabled toggles the submit affordance while a search runs.
	SetSubmitEnabled(enabled bool)
	// Submit places the proof into the outgoing form data and submits it.
	Submit(ctx context.Context, proof string) error
}

// Result is delivered once per accepted submit attempt.
type Result struct {
	Proof string
	// Cached is set when the proof came from the cache and no search ran.
	Cached bool
	// Attempts is the number of nonces evaluated.
	Attempts uint64
	Err      error
}

// Miner finds proofs of work before letting a form submit.
// Only one search runs at a time.
type Miner struct {
	cfg     Config
	proofs  *cache.ProofCache
	form    Form
	clock   clock.Clock
	hash    shared.HashFunc
	observe shared.Observer

	inFlight atomic.Bool
}

type newMinerOptions struct {
	clock   clock.Clock
	hash    shared.HashFunc
	observe shared.Observer
}

type OptionFunc func(*newMinerOptions)

// WithClock sets the time source driving attempts and the timeout.
func WithClock(c clock.Clock) OptionFunc {
	return func(opts *newMinerOptions) {
		opts.clock = c
	}
}

// WithHashFunc replaces the default SHA-256. A nil func disables mining.
func WithHashFunc(hash shared.HashFunc) OptionFunc {
	return func(opts *newMinerOptions) {
		opts.hash = hash
	}
}

// WithObserver registers a sink for every computed digest.
func WithObserver(observe shared.Observer) OptionFunc {
	return func(opts *newMinerOptions) {
		opts.observe = observe
	}
}

func New(cfg Config, proofs *cache.ProofCache, form Form, opts ...OptionFunc) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := newMinerOptions{
		clock: clock.New(),
		hash:  shared.SHA256Hex,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Miner{
		cfg:     cfg,
		proofs:  proofs,
		form:    form,
		clock:   options.clock,
		hash:    options.hash,
		observe: options.observe,
	}, nil
}

// AttemptSubmit gates a submission of the form on a proof of work for
// (previousProof, previousHash).
//
// A proof cached for previousHash is consumed and submitted right away.
// Otherwise the submit affordance is disabled and nonces 0, 1, 2, ... are
// tried one per attempt interval until one is valid or the timeout expires.
// The returned channel receives exactly one Result and is then closed.
func (m *Miner) AttemptSubmit(ctx context.Context, previousProof, previousHash string) (<-chan Result, error) {
	logger := logging.FromContext(ctx).Named("miner").With(
		zap.Stringer("attempt_id", uuid.New()),
		zap.String("previous_hash", previousHash),
	)
	ctx = logging.NewContext(ctx, logger)

	if m.hash == nil {
		logger.Warn("hashing capability not loaded")
		return nil, ErrMissingHashFunc
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		logger.Debug("ignoring submit attempt while a search is running")
		return nil, ErrSearchInFlight
	}

	results := make(chan Result, 1)

	proof, err := m.proofs.Consume(ctx, previousHash)
	switch {
	case err == nil:
		logger.Info("using cached proof", zap.String("proof", proof))
		res := Result{Proof: proof, Cached: true}
		if err := m.register(ctx, proof); err != nil {
			res.Err = err
		}
		m.finish(results, res, "cached")
		return results, nil
	case !errors.Is(err, cache.ErrNotFound):
		logger.Warn("proof cache lookup failed, searching instead", zap.Error(err))
	}

	m.form.SetSubmitEnabled(false)
	now := m.clock.Now()
	s := &search{
		previousProof: previousProof,
		previousHash:  previousHash,
		ticker:        m.clock.Ticker(m.cfg.AttemptInterval),
		timeout:       m.clock.Timer(m.cfg.Timeout),
		started:       now,
		deadline:      now.Add(m.cfg.Timeout),
	}
	logger.Info("searching for proof", zap.Object("config", m.cfg))
	go m.search(ctx, s, results)
	return results, nil
}

type search struct {
	previousProof string
	previousHash  string
	ticker        *clock.Ticker
	timeout       *clock.Timer
	started       time.Time
	deadline      time.Time
	nonce         uint64
	attempts      uint64
}

// stop cancels both timers. Called exactly once, on every exit path.
func (s *search) stop() {
	s.ticker.Stop()
	s.timeout.Stop()
}

func (m *Miner) search(ctx context.Context, s *search, results chan<- Result) {
	logger := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			m.cancel(ctx, s, results)
			return

		case <-s.timeout.C:
			m.timeout(ctx, s, results)
			return

		case <-s.ticker.C:
			// A tick may be pending when the timeout fires or ctx is canceled.
			if m.expired(ctx, s, results) {
				return
			}

			challenge := shared.Challenge(s.previousProof, s.nonce, s.previousHash)
			ok, err := shared.IsValidProof(m.hash, challenge, m.cfg.Difficulty, m.observe)
			if err != nil {
				s.stop()
				m.form.SetSubmitEnabled(true)
				logger.Error("invalid proof input", zap.String("challenge", challenge), zap.Error(err))
				m.finish(results, Result{Attempts: s.attempts, Err: err}, "failed")
				return
			}
			s.attempts++
			attemptsMetric.Inc()
			if !ok {
				s.nonce++
				continue
			}
			// The deadline may have passed while hashing.
			if m.expired(ctx, s, results) {
				return
			}

			s.stop()
			m.form.SetSubmitEnabled(true)
			searchDurationMetric.Observe(m.clock.Since(s.started).Seconds())

			proof := strconv.FormatUint(s.nonce, 10)
			logger.Info("proof found", zap.String("proof", proof))
			if err := m.proofs.Save(ctx, s.previousHash, proof); err != nil {
				logger.Warn("failed to cache proof", zap.Error(err))
			}
			res := Result{Proof: proof, Attempts: s.attempts}
			if err := m.register(ctx, proof); err != nil {
				res.Err = err
			}
			m.finish(results, res, "submitted")
			return
		}
	}
}

// expired ends the search if ctx is done or the timeout is due.
func (m *Miner) expired(ctx context.Context, s *search, results chan<- Result) bool {
	select {
	case <-ctx.Done():
		m.cancel(ctx, s, results)
		return true
	case <-s.timeout.C:
		m.timeout(ctx, s, results)
		return true
	default:
	}
	if !m.clock.Now().Before(s.deadline) {
		m.timeout(ctx, s, results)
		return true
	}
	return false
}

func (m *Miner) cancel(ctx context.Context, s *search, results chan<- Result) {
	s.stop()
	m.form.SetSubmitEnabled(true)
	logging.FromContext(ctx).Info("search canceled", zap.Uint64("attempts", s.attempts))
	m.finish(results, Result{Attempts: s.attempts, Err: ctx.Err()}, "canceled")
}

func (m *Miner) timeout(ctx context.Context, s *search, results chan<- Result) {
	s.stop()
	m.form.SetSubmitEnabled(true)
	logging.FromContext(ctx).Warn("proof of work took too long, try again",
		zap.Uint64("attempts", s.attempts),
		zap.Duration("timeout", m.cfg.Timeout),
	)
	m.finish(results, Result{Attempts: s.attempts, Err: ErrTimeout}, "timeout")
}

func (m *Miner) register(ctx context.Context, proof string) error {
	if err := m.form.Submit(ctx, proof); err != nil {
		logging.FromContext(ctx).Error("submitting form", zap.String("proof", proof), zap.Error(err))
		return fmt.Errorf("submitting form with proof %s: %w", proof, err)
	}
	return nil
}

func (m *Miner) finish(results chan<- Result, res Result, outcome string) {
	if res.Err != nil && outcome != "timeout" && outcome != "canceled" {
		outcome = "failed"
	}
	outcomesMetric.WithLabelValues(outcome).Inc()
	m.inFlight.Store(false)
	results <- res
	close(results)
}
