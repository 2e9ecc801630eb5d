package graph

import (
	"context"

	"github.com/doraboateng/archive-service/pkg/types"
)

// loadAlphabets materializes one Alphabet node per record: its character
// inventory, an optional reference to its Script node (created lazily on
// first reference) and one Transliteration reference per language-tagged
// display name.
func (c *Coordinator) loadAlphabets(ctx context.Context, alphabets []types.Alphabet) error {
	c.log.Info("importing alphabets", "count", len(alphabets))

	for _, alphabet := range alphabets {
		if err := ctx.Err(); err != nil {
			return err
		}

		rels := []Triple{{Predicate: "characters", Object: String(alphabet.Letters)}}

		scriptUID, ok, err := c.resolver.Resolve(ctx, nodeScript, alphabet.ScriptCode)
		if err != nil {
			return err
		}
		if ok {
			rels = Ref(rels, "script", scriptUID)
		}

		// Untagged names carry no language information and are dropped,
		// matching the source systems' display-name rules.
		var names []types.Transliteration
		for _, name := range alphabet.Names {
			if name.Tagged() {
				names = append(names, name)
			}
		}

		nameUIDs, err := c.transliterationUIDs(ctx, nodeAlphabet, alphabet.Code, names)
		if err != nil {
			return err
		}
		for _, uid := range nameUIDs {
			rels = Ref(rels, "names", uid)
		}

		if _, err := c.exec.Upsert(ctx, nodeAlphabet, "code", alphabet.Code, rels); err != nil {
			return err
		}
	}

	c.verifyAlphabets(ctx)

	return nil
}
