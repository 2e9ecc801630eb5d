package graph

import (
	"context"

	"github.com/doraboateng/archive-service/pkg/types"
)

// loadLanguages materializes one Language node per record with its name
// transliterations and, when the record names one, a parent reference.
//
// A parent code whose own record has not loaded yet is fine: the resolver
// creates a bare Language node that the parent's record fills in later, so
// collection order never affects correctness.
func (c *Coordinator) loadLanguages(ctx context.Context, languages []types.Language) error {
	c.log.Info("importing languages", "count", len(languages))

	for _, language := range languages {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rels []Triple

		nameUIDs, err := c.transliterationUIDs(ctx, nodeLanguage, language.Code, language.Names)
		if err != nil {
			return err
		}
		for _, uid := range nameUIDs {
			rels = Ref(rels, "names", uid)
		}

		parentUID, ok, err := c.resolver.Resolve(ctx, nodeLanguage, language.ParentCode)
		if err != nil {
			return err
		}
		if ok {
			rels = Ref(rels, "parent", parentUID)
		}

		if _, err := c.exec.Upsert(ctx, nodeLanguage, "code", language.Code, rels); err != nil {
			return err
		}
	}

	c.verifyLanguages(ctx)

	return nil
}
