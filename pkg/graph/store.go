package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"
	"github.com/sony/gobreaker"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Response is the store's answer to an upsert request: the query result as
// JSON plus the identifiers of any nodes the mutation created.
type Response struct {
	JSON []byte
	UIDs map[string]string
}

// Store is the transactional graph protocol the load engine runs against:
// an atomic query+mutate+commit, a read-only query, and the drop-all
// administrative operation. The production implementation is DgraphStore;
// tests substitute an in-memory fake.
type Store interface {
	// Mutate submits query and setNquads as a single upsert block,
	// committed in the same round trip.
	Mutate(ctx context.Context, query, setNquads string) (*Response, error)

	// Query runs a read-only query and returns the raw JSON result.
	Query(ctx context.Context, query string) ([]byte, error)

	// DropAll erases every node and relation. Administrative hook only.
	DropAll(ctx context.Context) error

	Close() error
}

// StoreOptions tunes the Dgraph-backed store. Zero values fall back to the
// defaults below.
type StoreOptions struct {
	// RequestTimeout bounds every individual store request.
	RequestTimeout time.Duration

	// MaxRetries is the number of additional attempts after a transient
	// failure. Re-submitting an upsert is safe: the mutations are
	// idempotent by key.
	MaxRetries int

	// RetryBackoff is the delay before the first retry; it doubles per
	// attempt.
	RetryBackoff time.Duration

	// Breaker, when non-nil, trips mutations after repeated failures so a
	// dead store fails fast instead of burning the retry budget per record.
	Breaker *gobreaker.Settings

	Logger *slog.Logger
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetryBackoff   = 250 * time.Millisecond
)

// DgraphStore implements Store over the dgo client.
type DgraphStore struct {
	conn    *grpc.ClientConn
	client  *dgo.Dgraph
	opts    StoreOptions
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// OpenDgraphStore dials the Dgraph alpha at addr and returns a connected
// store. The dial itself is lazy in gRPC, so a dead address surfaces as
// ErrConnection on the first request rather than here.
func OpenDgraphStore(addr string, opts StoreOptions) (*DgraphStore, error) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}

	s := &DgraphStore{
		conn:   conn,
		client: dgo.NewDgraphClient(api.NewDgraphClient(conn)),
		opts:   opts,
		log:    opts.Logger,
	}

	if opts.Breaker != nil {
		s.breaker = gobreaker.NewCircuitBreaker(*opts.Breaker)
	}

	return s, nil
}

// Mutate implements Store. The transaction is discarded on every exit path;
// with CommitNow set, a successful Do has already committed and the discard
// is a no-op.
func (s *DgraphStore) Mutate(ctx context.Context, query, setNquads string) (*Response, error) {
	do := func() (*Response, error) {
		reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()

		txn := s.client.NewTxn()
		defer txn.Discard(context.WithoutCancel(reqCtx))

		resp, err := txn.Do(reqCtx, &api.Request{
			Query:     query,
			Mutations: []*api.Mutation{{SetNquads: []byte(setNquads)}},
			CommitNow: true,
		})
		if err != nil {
			return nil, err
		}

		return &Response{JSON: resp.Json, UIDs: resp.Uids}, nil
	}

	if s.breaker != nil {
		inner := do
		do = func() (*Response, error) {
			resp, err := s.breaker.Execute(func() (any, error) { return inner() })
			if err != nil {
				return nil, err
			}
			return resp.(*Response), nil
		}
	}

	return retry(ctx, s.opts, s.log, do)
}

// Query implements Store.
func (s *DgraphStore) Query(ctx context.Context, query string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	resp, err := s.client.NewReadOnlyTxn().Query(reqCtx, query)
	if err != nil {
		return nil, err
	}

	return resp.Json, nil
}

// DropAll implements Store.
func (s *DgraphStore) DropAll(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	return s.client.Alter(reqCtx, &api.Operation{DropAll: true})
}

// Close implements Store.
func (s *DgraphStore) Close() error {
	return s.conn.Close()
}

// retry re-runs do on transient failures, up to opts.MaxRetries additional
// attempts with doubling backoff.
func retry(ctx context.Context, opts StoreOptions, log *slog.Logger, do func() (*Response, error)) (*Response, error) {
	backoff := opts.RetryBackoff

	resp, err := do()
	for attempt := 1; err != nil && attempt <= opts.MaxRetries && transient(err); attempt++ {
		log.Warn("retrying store request",
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2

		resp, err = do()
	}

	return resp, err
}

// transient reports whether err is worth retrying. Open-breaker and
// caller-cancellation errors are not; gRPC unavailability and per-request
// deadline expiry are.
func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}
