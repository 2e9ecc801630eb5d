package graph

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// fakeStore emulates the store's upsert-block semantics in memory: at most
// one node per (type, key), triples kept as a set so identical assertions
// are idempotent, created nodes reported through the UID map and matched
// nodes through the query JSON. The loader tests run entirely against it.
type fakeStore struct {
	mu      sync.Mutex
	nextUID int
	keys    map[string]string   // type\x00keyName\x00keyValue -> uid
	triples map[string]struct{} // "uid <pred> obj ."

	mutates  int
	closed   bool
	failWhen func(query string) error

	queryJSON []byte
	queryErr  error
}

var upsertQueryPattern = regexp.MustCompile(`eq\((\w+)\.(\w+), "((?:[^"\\]|\\.)*)"\)`)

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextUID:   1,
		keys:      make(map[string]string),
		triples:   make(map[string]struct{}),
		queryJSON: []byte(`{}`),
	}
}

func (f *fakeStore) Mutate(ctx context.Context, query, setNquads string) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mutates++

	if f.failWhen != nil {
		if err := f.failWhen(query); err != nil {
			return nil, err
		}
	}

	m := upsertQueryPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("fake store: unrecognized query %q", query)
	}

	key := m[1] + "\x00" + m[2] + "\x00" + m[3]
	uid, existed := f.keys[key]
	if !existed {
		uid = fmt.Sprintf("0x%x", f.nextUID)
		f.nextUID++
		f.keys[key] = uid
	}

	for _, line := range strings.Split(setNquads, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f.triples[strings.Replace(line, "uid(u)", uid, 1)] = struct{}{}
	}

	if existed {
		return &Response{JSON: []byte(fmt.Sprintf(`{"node":[{"uid":%q}]}`, uid))}, nil
	}
	return &Response{UIDs: map[string]string{"uid(u)": uid}}, nil
}

func (f *fakeStore) Query(ctx context.Context, query string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryJSON, f.queryErr
}

func (f *fakeStore) DropAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = make(map[string]string)
	f.triples = make(map[string]struct{})
	return nil
}

func (f *fakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStore) uidFor(nodeType, keyName, keyValue string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[nodeType+"\x00"+keyName+"\x00"+keyValue]
}

func (f *fakeStore) nodeCount(nodeType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key := range f.keys {
		if strings.HasPrefix(key, nodeType+"\x00") {
			n++
		}
	}
	return n
}

func (f *fakeStore) tripleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triples)
}

// objects returns the rendered objects of every triple uid-pred-*, where
// pred is the fully qualified predicate (e.g. "Alphabet.names").
func (f *fakeStore) objects(uid, pred string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := uid + " <" + pred + "> "
	var out []string
	for triple := range f.triples {
		if strings.HasPrefix(triple, prefix) {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(triple, prefix), " ."))
		}
	}
	return out
}
