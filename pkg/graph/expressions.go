package graph

import (
	"context"

	"github.com/google/uuid"

	"github.com/doraboateng/archive-service/pkg/types"
)

// translationFields maps each transliteration-list field of an expression to
// its relation name. The owner type doubles as the field's dedup namespace:
// identical text in two different fields stays two nodes, while identical
// text within one field collapses to one.
var translationFields = []struct {
	ownerType string
	predicate string
	values    func(types.Expression) []types.Transliteration
}{
	{"Expression.literal_translation", "literalTranslations", func(e types.Expression) []types.Transliteration { return e.LiteralTranslation }},
	{"Expression.practical_translation", "practicalTranslations", func(e types.Expression) []types.Transliteration { return e.PracticalTranslation }},
	{"Expression.meaning", "meanings", func(e types.Expression) []types.Transliteration { return e.Meaning }},
}

// loadExpressions materializes one Expression node per record: its type,
// optional part of speech, title transliterations, language references and
// the three translation/meaning transliteration lists.
//
// Records whose title matches the configured exclusion list are dropped
// before any write, as are records with a malformed UUID.
func (c *Coordinator) loadExpressions(ctx context.Context, expressions []types.Expression) error {
	c.log.Info("importing expressions", "count", len(expressions))

	for _, expression := range expressions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.excluded(expression) {
			c.log.Info("skipping excluded expression", "uuid", expression.UUID)
			continue
		}

		if err := uuid.Validate(expression.UUID); err != nil {
			c.log.Warn("skipping expression with malformed uuid", "uuid", expression.UUID, "error", err)
			continue
		}

		rels := []Triple{{Predicate: "type", Object: Enum(string(expression.Type))}}

		titleUIDs, err := c.transliterationUIDs(ctx, nodeExpression, expression.UUID, expression.Titles)
		if err != nil {
			return err
		}
		for _, uid := range titleUIDs {
			rels = Ref(rels, "titles", uid)
		}

		for _, code := range expression.Languages {
			langUID, ok, err := c.resolver.Resolve(ctx, nodeLanguage, code)
			if err != nil {
				return err
			}
			if ok {
				rels = Ref(rels, "languages", langUID)
			}
		}

		// No relation at all when the record carries no part of speech;
		// an empty-string enum must never reach the store.
		if expression.PartOfSpeech != "" {
			rels = append(rels, Triple{Predicate: "partOfSpeech", Object: Enum(string(expression.PartOfSpeech))})
		}

		for _, field := range translationFields {
			uids, err := c.transliterationUIDs(ctx, field.ownerType, expression.UUID, field.values(expression))
			if err != nil {
				return err
			}
			for _, uid := range uids {
				rels = Ref(rels, field.predicate, uid)
			}
		}

		if _, err := c.exec.Upsert(ctx, nodeExpression, "uuid", expression.UUID, rels); err != nil {
			return err
		}
	}

	c.verifyExpressions(ctx)

	return nil
}

// excluded reports whether any of the expression's titles matches the
// configured skip list.
func (c *Coordinator) excluded(expression types.Expression) bool {
	if len(c.skipTitles) == 0 {
		return false
	}
	for _, title := range expression.Titles {
		if _, skip := c.skipTitles[title.Value]; skip {
			return true
		}
	}
	return false
}
