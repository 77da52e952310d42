package similarity

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Document is a stored essay the candidate is compared against.
type Document struct {
	FileName        string
	OwnerName       string
	OwnerTelegramID int64
	Content         string
}

// Match is a stored essay whose ratio exceeded the threshold.
type Match struct {
	FileName        string
	OwnerName       string
	OwnerTelegramID int64
	Ratio           decimal.Decimal
}

// Config tunes a Checker.
type Config struct {
	// Threshold is the percentage a ratio must exceed to be reported.
	Threshold float64
	// Timeout bounds a whole Check call.
	Timeout time.Duration
	// Concurrency caps parallel comparisons. Zero means GOMAXPROCS.
	Concurrency int
}

// Observer receives the duration of every Check call.
type Observer func(elapsed time.Duration, timedOut bool)

// Checker compares a candidate text against a corpus within a time budget.
type Checker struct {
	threshold   decimal.Decimal
	timeout     time.Duration
	concurrency int
	observe     Observer
	log         zerolog.Logger
}

// NewChecker builds a Checker. observe may be nil.
func NewChecker(cfg Config, observe Observer, log zerolog.Logger) *Checker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Checker{
		threshold:   decimal.NewFromFloat(cfg.Threshold),
		timeout:     cfg.Timeout,
		concurrency: concurrency,
		observe:     observe,
		log:         log.With().Str("component", "similarity-checker").Logger(),
	}
}

// Check returns the corpus entries whose ratio against candidate exceeds the
// threshold, highest first. When the budget runs out it logs a warning and
// returns nil.
func (c *Checker) Check(ctx context.Context, candidate string, corpus []Document) []Match {
	if len(corpus) == 0 {
		return nil
	}

	start := time.Now()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ratios := make([]decimal.Decimal, len(corpus))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for idx := range corpus {
		g.Go(func() error {
			ratio, err := RatioContext(gctx, candidate, corpus[idx].Content)
			if err != nil {
				return err
			}
			ratios[idx] = ratio
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded)
		if c.observe != nil {
			c.observe(elapsed, timedOut)
		}
		c.log.Warn().
			Err(err).
			Dur("elapsed", elapsed).
			Int("corpus_size", len(corpus)).
			Msg("similarity check did not finish, treating as no matches")
		return nil
	}
	if c.observe != nil {
		c.observe(elapsed, false)
	}

	var matches []Match
	for idx, doc := range corpus {
		if !ratios[idx].GreaterThan(c.threshold) {
			continue
		}
		matches = append(matches, Match{
			FileName:        doc.FileName,
			OwnerName:       doc.OwnerName,
			OwnerTelegramID: doc.OwnerTelegramID,
			Ratio:           ratios[idx],
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Ratio.GreaterThan(matches[j].Ratio)
	})

	c.log.Debug().
		Dur("elapsed", elapsed).
		Int("corpus_size", len(corpus)).
		Int("matches", len(matches)).
		Msg("similarity check finished")
	return matches
}
