// Package graph is the upsert engine that materializes extracted reference
// data as one canonical node per logical entity in Dgraph. Entities are
// addressed by natural keys, cross-references resolve to stable node
// identifiers, and repeated multilingual text deduplicates through content
// hashing, so a full load is idempotent and safe to re-run.
package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/doraboateng/archive-service/pkg/types"
)

// Node type names as stored in the graph.
const (
	nodeAlphabet        = "Alphabet"
	nodeExpression      = "Expression"
	nodeLanguage        = "Language"
	nodeScript          = "Script"
	nodeTransliteration = "Transliteration"
)

// runState tracks a Coordinator through one load run.
type runState string

const (
	stateIdle                runState = "idle"
	stateConnected           runState = "connected"
	stateLoadingAlphabets    runState = "loading_alphabets"
	stateLoadingExpressions  runState = "loading_expressions"
	stateLoadingLanguages    runState = "loading_languages"
	stateDisconnectedSuccess runState = "disconnected_success"
	stateDisconnectedFailure runState = "disconnected_failure"
)

// Coordinator drives one load run: it owns the store connection, the upsert
// executor and the per-run resolver cache, and runs the entity loaders in a
// fixed order. A Coordinator is single-use; build a new one per run so no
// cached resolution leaks across runs.
type Coordinator struct {
	store    Store
	exec     *Executor
	resolver *Resolver
	log      *slog.Logger

	// skipTitles filters known-bad records by primary display text.
	skipTitles map[string]struct{}

	state runState
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the run logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithSkipTitles excludes expressions whose title text matches any entry.
func WithSkipTitles(titles []string) Option {
	return func(c *Coordinator) {
		for _, t := range titles {
			c.skipTitles[t] = struct{}{}
		}
	}
}

// NewCoordinator returns a Coordinator for one load run against store.
// The caller keeps ownership of nothing: Run closes the store.
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	exec := NewExecutor(store)

	c := &Coordinator{
		store:      store,
		exec:       exec,
		resolver:   NewResolver(exec),
		log:        slog.Default(),
		skipTitles: make(map[string]struct{}),
		state:      stateIdle,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Coordinator) transition(next runState) {
	c.log.Debug("load state change", "from", c.state, "to", next)
	c.state = next
}

// Run loads the full dataset: alphabets, then expressions, then languages.
// The order only affects when placeholder nodes appear; references resolve
// correctly regardless because the resolver creates bare nodes on first use.
//
// The store connection is released on every exit path. A loader failure
// aborts the run, but upserts committed before the failure stand; an
// idempotent re-run repairs the remainder. Cancellation via ctx is honored
// between loaders and between records.
func (c *Coordinator) Run(ctx context.Context, data *types.Dataset) (err error) {
	c.transition(stateConnected)

	defer func() {
		closeErr := c.store.Close()
		if err == nil && closeErr != nil {
			err = errors.Join(ErrConnection, closeErr)
		}
		if err != nil {
			c.transition(stateDisconnectedFailure)
		} else {
			c.transition(stateDisconnectedSuccess)
		}
	}()

	steps := []struct {
		state runState
		run   func(context.Context) error
	}{
		{stateLoadingAlphabets, func(ctx context.Context) error { return c.loadAlphabets(ctx, data.Alphabets) }},
		{stateLoadingExpressions, func(ctx context.Context) error { return c.loadExpressions(ctx, data.Expressions) }},
		{stateLoadingLanguages, func(ctx context.Context) error { return c.loadLanguages(ctx, data.Languages) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.transition(step.state)
		if err := step.run(ctx); err != nil {
			return err
		}
	}

	if len(data.Stories) > 0 {
		c.log.Warn("story records present but story loading is not implemented", "count", len(data.Stories))
	}

	return nil
}

// transliterationUIDs upserts one Transliteration node per non-blank value
// and returns the node identifiers in input order. ownerType and ownerKey
// scope the dedup hash, so the same text under one owner field collapses to
// one node even when its language or script tags differ across sources.
//
// Blank values are skipped, not fatal: the record they belong to still loads.
func (c *Coordinator) transliterationUIDs(ctx context.Context, ownerType, ownerKey string, trs []types.Transliteration) ([]string, error) {
	var uids []string

	for _, tr := range trs {
		canonical, hash, err := EncodeTransliteration(ownerType, ownerKey, tr.Value)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				c.log.Debug("skipping blank transliteration", "owner_type", ownerType, "owner_key", ownerKey)
				continue
			}
			return nil, err
		}

		rels := []Triple{{Predicate: "value", Object: Escaped(canonical)}}
		if tr.LangCode != "" {
			rels = append(rels, Triple{Predicate: "lang_code", Object: String(tr.LangCode)})
		}
		if tr.ScriptCode != "" {
			rels = append(rels, Triple{Predicate: "script_code", Object: String(tr.ScriptCode)})
		}

		uid, err := c.exec.Upsert(ctx, nodeTransliteration, "hash", hash, rels)
		if err != nil {
			return nil, err
		}

		uids = append(uids, uid)
	}

	return uids, nil
}
