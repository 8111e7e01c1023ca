// Package fault simulates an unreliable remote dependency: every wrapped
// operation waits a random latency and writes may fail at a configured rate.
package fault

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrInjected is returned when the injector decides an operation fails.
var ErrInjected = errors.New("injected failure")

// Class selects which profile applies to an operation.
type Class int

const (
	Read Class = iota
	Write
)

func (c Class) String() string {
	if c == Write {
		return "write"
	}
	return "read"
}

// Profile holds the latency range and failure probability for one class.
type Profile struct {
	MinLatency  time.Duration `yaml:"min_latency" json:"min_latency"`
	MaxLatency  time.Duration `yaml:"max_latency" json:"max_latency"`
	FailureRate float64       `yaml:"failure_rate" json:"failure_rate"`
}

// DefaultRead and DefaultWrite mirror the behaviour of the mock backend the
// web client was written against.
func DefaultRead() Profile {
	return Profile{MinLatency: 200 * time.Millisecond, MaxLatency: 1200 * time.Millisecond}
}

func DefaultWrite() Profile {
	return Profile{MinLatency: 200 * time.Millisecond, MaxLatency: 1200 * time.Millisecond, FailureRate: 0.08}
}

// Injector draws latencies and failure outcomes. It is safe for concurrent use.
type Injector struct {
	read, write Profile

	mu     sync.Mutex
	rng    *rand.Rand
	sleep  func(time.Duration)
	logger *slog.Logger
}

type Option func(*Injector)

// WithRand replaces the random source, typically with a seeded one in tests.
func WithRand(r *rand.Rand) Option {
	return func(in *Injector) { in.rng = r }
}

// WithSleep replaces time.Sleep.
func WithSleep(fn func(time.Duration)) Option {
	return func(in *Injector) { in.sleep = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Injector) { in.logger = l }
}

func New(read, write Profile, opts ...Option) *Injector {
	in := &Injector{
		read:   read,
		write:  write,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep:  time.Sleep,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Disabled returns an injector that neither waits nor fails.
func Disabled() *Injector {
	return New(Profile{}, Profile{})
}

func (in *Injector) profile(c Class) Profile {
	if c == Write {
		return in.write
	}
	return in.read
}

// Delay draws a duration uniformly from [MinLatency, MaxLatency] of c.
func (in *Injector) Delay(c Class) time.Duration {
	p := in.profile(c)
	if p.MaxLatency <= p.MinLatency {
		return p.MinLatency
	}
	span := int64(p.MaxLatency - p.MinLatency)
	in.mu.Lock()
	n := in.rng.Int64N(span + 1)
	in.mu.Unlock()
	return p.MinLatency + time.Duration(n)
}

// Simulate blocks for a random latency of class c. The wait is not
// interrupted by cancellation; callers wanting a deadline set it above.
func (in *Injector) Simulate(c Class) {
	if d := in.Delay(c); d > 0 {
		in.sleep(d)
	}
}

// ShouldFail reports whether the next operation of class c fails. Each call
// is an independent draw.
func (in *Injector) ShouldFail(c Class) bool {
	rate := in.profile(c).FailureRate
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	in.mu.Lock()
	v := in.rng.Float64()
	in.mu.Unlock()
	return v < rate
}

// Do wraps fn: it waits, then checks the failure draw, and only then runs fn.
// An injected failure returns ErrInjected without calling fn. Reads only fail
// when their profile carries a non-zero rate, which the defaults do not.
func Do[T any](ctx context.Context, in *Injector, c Class, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	in.Simulate(c)
	if in.ShouldFail(c) {
		in.logger.Warn("injected failure", "op", op, "class", c.String())
		return zero, ErrInjected
	}
	return fn(ctx)
}
