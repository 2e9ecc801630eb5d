package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

// Executor performs idempotent create-or-update operations: one upsert block
// per call, keyed by a node type and a natural key. Concurrent or repeated
// calls with the same key converge on one node because query and mutation
// commit in a single atomic request.
type Executor struct {
	store Store
}

// NewExecutor returns an Executor backed by store.
func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

// Upsert finds at most one node of nodeType whose keyName attribute equals
// keyValue, then asserts every relation in rels plus the key attribute and
// the type marker against that node, or against a fresh node if none
// matched. It returns the node's identifier.
//
// List-valued relations appear as repeated triples with the same predicate;
// identical triples are idempotent at the store, so re-running an upsert
// never duplicates them.
func (e *Executor) Upsert(ctx context.Context, nodeType, keyName, keyValue string, rels []Triple) (string, error) {
	resp, err := e.store.Mutate(ctx,
		upsertQuery(nodeType, keyName, keyValue),
		upsertNquads(nodeType, keyName, keyValue, rels))
	if err != nil {
		return "", fmt.Errorf("%w: %s %s=%q: %v", ErrUpsert, nodeType, keyName, keyValue, err)
	}

	uid := uidFromResponse(resp)
	if uid == "" {
		return "", fmt.Errorf("%w: %s %s=%q: no uid in store response", ErrUpsert, nodeType, keyName, keyValue)
	}

	return uid, nil
}

// uidFromResponse extracts the upserted node's identifier. A created node
// shows up in the response UID map; an updated node only in the query JSON,
// as the single binding of the u variable.
func uidFromResponse(resp *Response) string {
	if resp == nil {
		return ""
	}

	if len(resp.UIDs) == 1 {
		for _, uid := range resp.UIDs {
			return uid
		}
	}

	if len(resp.JSON) == 0 {
		return ""
	}

	var result struct {
		Node []struct {
			UID string `json:"uid"`
		} `json:"node"`
	}
	if err := json.Unmarshal(resp.JSON, &result); err != nil {
		return ""
	}
	if len(result.Node) != 1 {
		return ""
	}

	return result.Node[0].UID
}
