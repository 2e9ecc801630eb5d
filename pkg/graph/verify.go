package graph

import (
	"context"
	"encoding/json"
	"strings"
)

// Read-back verification. Each loader calls its verify function after the
// load loop so the log carries an auditable count and per-record summary.
// Verification is observational only: a failing query is logged and the run
// result is unaffected.

type verifiedTransliteration struct {
	Value string `json:"Transliteration.value"`
	Hash  string `json:"Transliteration.hash"`
}

// summary renders transliterations as "value (hash prefix)" pairs.
func summary(trs []verifiedTransliteration) string {
	parts := make([]string, 0, len(trs))
	for _, tr := range trs {
		hash := tr.Hash
		if len(hash) > 6 {
			hash = hash[:6]
		}
		parts = append(parts, tr.Value+" ("+hash+")")
	}
	return strings.Join(parts, ", ")
}

const verifyAlphabetsQuery = `{
	alphabets(func: type(Alphabet)) {
		Alphabet.code
		Alphabet.names {
			expand(_all_)
		}
	}
}`

func (c *Coordinator) verifyAlphabets(ctx context.Context) {
	var result struct {
		Alphabets []struct {
			Code  string                    `json:"Alphabet.code"`
			Names []verifiedTransliteration `json:"Alphabet.names"`
		} `json:"alphabets"`
	}
	if !c.verifyQuery(ctx, nodeAlphabet, verifyAlphabetsQuery, &result) {
		return
	}

	c.log.Info("alphabets in graph", "total", len(result.Alphabets))
	for _, alphabet := range result.Alphabets {
		c.log.Info("alphabet", "code", alphabet.Code, "names", summary(alphabet.Names))
	}
}

const verifyExpressionsQuery = `{
	expressions(func: type(Expression)) {
		Expression.uuid
		Expression.titles {
			expand(_all_)
		}
		Expression.practicalTranslations {
			expand(_all_)
		}
		Expression.languages {
			expand(_all_)
		}
	}
}`

func (c *Coordinator) verifyExpressions(ctx context.Context) {
	var result struct {
		Expressions []struct {
			UUID                  string                    `json:"Expression.uuid"`
			Titles                []verifiedTransliteration `json:"Expression.titles"`
			PracticalTranslations []verifiedTransliteration `json:"Expression.practicalTranslations"`
		} `json:"expressions"`
	}
	if !c.verifyQuery(ctx, nodeExpression, verifyExpressionsQuery, &result) {
		return
	}

	c.log.Info("expressions in graph", "total", len(result.Expressions))
	for _, expression := range result.Expressions {
		id := expression.UUID
		if len(id) > 6 {
			id = id[:6]
		}
		c.log.Info("expression",
			"uuid", id,
			"titles", summary(expression.Titles),
			"translations", summary(expression.PracticalTranslations))
	}
}

const verifyLanguagesQuery = `{
	languages(func: type(Language)) {
		Language.code
		Language.names {
			expand(_all_)
		}
	}
}`

func (c *Coordinator) verifyLanguages(ctx context.Context) {
	var result struct {
		Languages []struct {
			Code  string                    `json:"Language.code"`
			Names []verifiedTransliteration `json:"Language.names"`
		} `json:"languages"`
	}
	if !c.verifyQuery(ctx, nodeLanguage, verifyLanguagesQuery, &result) {
		return
	}

	c.log.Info("languages in graph", "total", len(result.Languages))
	for _, language := range result.Languages {
		c.log.Info("language", "code", language.Code, "names", summary(language.Names))
	}
}

// verifyQuery runs one read-only query and unmarshals it into out. Failures
// are reported, never propagated: committed writes stay valid whether or not
// the read-back succeeds.
func (c *Coordinator) verifyQuery(ctx context.Context, nodeType, query string, out any) bool {
	data, err := c.store.Query(ctx, query)
	if err != nil {
		c.log.Warn("verification query failed", "node_type", nodeType, "error", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Warn("verification response unreadable", "node_type", nodeType, "error", err)
		return false
	}
	return true
}
