package graph

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// resolverStripes is the number of per-key locks. Uniqueness matters, not
// contention: a stripe only serializes resolve-or-create for keys that hash
// together.
const resolverStripes = 64

type cacheKey struct {
	nodeType string
	key      string
}

// Resolver maps (node type, natural key) pairs to store identifiers,
// creating bare nodes on first reference. Resolutions are memoized for the
// lifetime of one load run; the cache is never pre-seeded from the store and
// must be discarded with the run. A Resolver is owned by its Coordinator,
// never shared across runs.
//
// Key-striped locks make resolve-or-create atomic per key, so the resolver
// stays correct if entity loaders are ever run concurrently.
type Resolver struct {
	exec *Executor

	mu      sync.RWMutex
	cache   map[cacheKey]string // "" records a failed creation
	stripes [resolverStripes]sync.Mutex
}

// NewResolver returns an empty Resolver backed by exec.
func NewResolver(exec *Executor) *Resolver {
	return &Resolver{
		exec:  exec,
		cache: make(map[cacheKey]string),
	}
}

// keyAttr is the natural-key attribute shared by every code-addressed node
// type (Script, Language, Alphabet). Hash-addressed Transliteration nodes
// bypass the resolver.
const keyAttr = "code"

// Resolve returns the identifier of the nodeType node addressed by key,
// creating a bare node when none exists yet. Later upserts of the owning
// entity fill the node in.
//
// An empty key means "no reference": Resolve reports ok=false with no error,
// which is how callers skip optional references such as an alphabet without
// a script. A store failure is cached as not-found for the rest of the run
// and surfaced as ErrResolution.
func (r *Resolver) Resolve(ctx context.Context, nodeType, key string) (uid string, ok bool, err error) {
	if key == "" {
		return "", false, nil
	}

	ck := cacheKey{nodeType: nodeType, key: key}

	r.mu.RLock()
	uid, hit := r.cache[ck]
	r.mu.RUnlock()
	if hit {
		return uid, uid != "", nil
	}

	stripe := &r.stripes[stripeFor(ck)]
	stripe.Lock()
	defer stripe.Unlock()

	// Re-check under the stripe lock: a racing caller may have resolved
	// this key while we waited.
	r.mu.RLock()
	uid, hit = r.cache[ck]
	r.mu.RUnlock()
	if hit {
		return uid, uid != "", nil
	}

	uid, upsertErr := r.exec.Upsert(ctx, nodeType, keyAttr, key, nil)

	r.mu.Lock()
	r.cache[ck] = uid
	r.mu.Unlock()

	if upsertErr != nil {
		return "", false, fmt.Errorf("%w: %s %q: %v", ErrResolution, nodeType, key, upsertErr)
	}

	return uid, true, nil
}

func stripeFor(ck cacheKey) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ck.nodeType))
	h.Write([]byte{0})
	h.Write([]byte(ck.key))
	return h.Sum32() % resolverStripes
}
