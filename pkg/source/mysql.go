// Package source extracts the legacy relational data as plain projections
// into the in-memory dataset the graph loader consumes. There is no mapping
// logic beyond row-to-struct shaping; the load engine owns all semantics.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/doraboateng/archive-service/pkg/types"
)

// definitionTypes maps the legacy numeric definition type to its enum.
var definitionTypes = map[int]types.ExpressionType{
	0:  types.ExpressionTypeWord,
	5:  types.ExpressionTypeName,
	10: types.ExpressionTypeExpression,
	30: types.ExpressionTypeStory,
}

// partsOfSpeech maps the legacy sub_type abbreviations.
var partsOfSpeech = map[string]types.PartOfSpeech{
	"adj": types.PartOfSpeechAdjective,
	"adv": types.PartOfSpeechAdverb,
	"n":   types.PartOfSpeechNoun,
	"v":   types.PartOfSpeechVerb,
}

// Client reads the legacy MariaDB database.
type Client struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to the database behind dsn and verifies the connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping source database: %w", err)
	}

	return &Client{db: db, log: log}, nil
}

// Close releases the database handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// FetchAll extracts the full dataset. Stories are reserved and always empty.
func (c *Client) FetchAll(ctx context.Context) (*types.Dataset, error) {
	alphabets, err := c.fetchAlphabets(ctx)
	if err != nil {
		return nil, err
	}

	expressions, err := c.fetchExpressions(ctx)
	if err != nil {
		return nil, err
	}

	languages, err := c.fetchLanguages(ctx)
	if err != nil {
		return nil, err
	}

	return &types.Dataset{
		Alphabets:   alphabets,
		Expressions: expressions,
		Languages:   languages,
	}, nil
}

// newTransliteration shapes one (value, language, script) row. Returns
// ok=false for empty values so callers can drop them at the edge.
func newTransliteration(value, lang, script sql.NullString) (types.Transliteration, bool) {
	if !value.Valid || value.String == "" {
		return types.Transliteration{}, false
	}
	return types.Transliteration{
		Value:      value.String,
		LangCode:   strings.ToLower(lang.String),
		ScriptCode: strings.ToLower(script.String),
	}, true
}

func (c *Client) fetchAlphabets(ctx context.Context) ([]types.Alphabet, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, code, script_code, letters FROM alphabets`)
	if err != nil {
		return nil, fmt.Errorf("fetch alphabets: %w", err)
	}
	defer rows.Close()

	type alphabetRow struct {
		id       int64
		alphabet types.Alphabet
	}

	var records []alphabetRow
	for rows.Next() {
		var (
			id                  int64
			code                string
			scriptCode, letters sql.NullString
		)
		if err := rows.Scan(&id, &code, &scriptCode, &letters); err != nil {
			return nil, fmt.Errorf("scan alphabet: %w", err)
		}
		records = append(records, alphabetRow{
			id: id,
			alphabet: types.Alphabet{
				Code:       strings.ToLower(code),
				ScriptCode: strings.ToLower(scriptCode.String),
				Letters:    letters.String,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch alphabets: %w", err)
	}

	c.log.Info("alphabets in source database", "total", len(records))

	alphabets := make([]types.Alphabet, 0, len(records))
	for _, record := range records {
		names, err := c.fetchTransliterations(ctx, record.id, `App\Models\Alphabet`)
		if err != nil {
			return nil, err
		}
		record.alphabet.Names = names
		alphabets = append(alphabets, record.alphabet)
	}

	return alphabets, nil
}

// fetchTransliterations pulls the polymorphic transliteration rows attached
// to one parent record.
func (c *Client) fetchTransliterations(ctx context.Context, parentID int64, parentType string) ([]types.Transliteration, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT language, transliteration FROM transliterations WHERE parent_id = ? AND parent_type = ?`,
		parentID, parentType)
	if err != nil {
		return nil, fmt.Errorf("fetch transliterations: %w", err)
	}
	defer rows.Close()

	var transliterations []types.Transliteration
	for rows.Next() {
		var lang, value sql.NullString
		if err := rows.Scan(&lang, &value); err != nil {
			return nil, fmt.Errorf("scan transliteration: %w", err)
		}
		if tr, ok := newTransliteration(value, lang, sql.NullString{}); ok {
			transliterations = append(transliterations, tr)
		}
	}

	return transliterations, rows.Err()
}

func (c *Client) fetchExpressions(ctx context.Context) ([]types.Expression, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, uuid, type, sub_type FROM definitions`)
	if err != nil {
		return nil, fmt.Errorf("fetch expressions: %w", err)
	}
	defer rows.Close()

	type definitionRow struct {
		id         int64
		expression types.Expression
	}

	var records []definitionRow
	for rows.Next() {
		var (
			id      int64
			uid     string
			defType int
			subType sql.NullString
		)
		if err := rows.Scan(&id, &uid, &defType, &subType); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}

		expressionType, known := definitionTypes[defType]
		if !known {
			c.log.Warn("unknown definition type", "id", id, "type", defType)
			continue
		}

		records = append(records, definitionRow{
			id: id,
			expression: types.Expression{
				UUID:         uid,
				Type:         expressionType,
				PartOfSpeech: partsOfSpeech[subType.String],
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch expressions: %w", err)
	}

	c.log.Info("expressions in source database", "total", len(records))

	expressions := make([]types.Expression, 0, len(records))
	for _, record := range records {
		expression := record.expression

		titles, err := c.fetchTitles(ctx, record.id)
		if err != nil {
			return nil, err
		}
		expression.Titles = titles

		languages, err := c.fetchExpressionLanguages(ctx, record.id)
		if err != nil {
			return nil, err
		}
		expression.Languages = languages

		if err := c.fetchTranslations(ctx, record.id, &expression); err != nil {
			return nil, err
		}

		expressions = append(expressions, expression)
	}

	return expressions, nil
}

// fetchTitles pulls an expression's titles: the title text itself, tagged
// with its alphabet's script, plus any transliterations attached to the
// title row.
func (c *Client) fetchTitles(ctx context.Context, definitionID int64) ([]types.Transliteration, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT t.id, t.title, a.script_code
		 FROM definition_titles AS t
		 LEFT JOIN alphabets AS a ON a.id = t.alphabet_id
		 WHERE t.definition_id = ?`,
		definitionID)
	if err != nil {
		return nil, fmt.Errorf("fetch titles: %w", err)
	}
	defer rows.Close()

	type titleRow struct {
		id     int64
		title  sql.NullString
		script sql.NullString
	}

	var records []titleRow
	for rows.Next() {
		var record titleRow
		if err := rows.Scan(&record.id, &record.title, &record.script); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch titles: %w", err)
	}

	var titles []types.Transliteration
	for _, record := range records {
		if tr, ok := newTransliteration(record.title, sql.NullString{}, record.script); ok {
			titles = append(titles, tr)
		}

		transliterations, err := c.fetchTransliterations(ctx, record.id, `App\Models\DefinitionTitle`)
		if err != nil {
			return nil, err
		}
		titles = append(titles, transliterations...)
	}

	return titles, nil
}

func (c *Client) fetchExpressionLanguages(ctx context.Context, definitionID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT l.code
		 FROM definition_language AS p
		 LEFT JOIN languages AS l ON l.id = p.language_id
		 WHERE p.definition_id = ?`,
		definitionID)
	if err != nil {
		return nil, fmt.Errorf("fetch expression languages: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code sql.NullString
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan expression language: %w", err)
		}
		if code.Valid && code.String != "" {
			codes = append(codes, code.String)
		}
	}

	return codes, rows.Err()
}

// fetchTranslations fills the expression's literal translation, practical
// translation and meaning lists from the translations table; each row can
// contribute to all three.
func (c *Client) fetchTranslations(ctx context.Context, definitionID int64, expression *types.Expression) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT language, practical, literal, meaning FROM translations WHERE definition_id = ?`,
		definitionID)
	if err != nil {
		return fmt.Errorf("fetch translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lang, practical, literal, meaning sql.NullString
		if err := rows.Scan(&lang, &practical, &literal, &meaning); err != nil {
			return fmt.Errorf("scan translation: %w", err)
		}

		if tr, ok := newTransliteration(literal, lang, sql.NullString{}); ok {
			expression.LiteralTranslation = append(expression.LiteralTranslation, tr)
		}
		if tr, ok := newTransliteration(practical, lang, sql.NullString{}); ok {
			expression.PracticalTranslation = append(expression.PracticalTranslation, tr)
		}
		if tr, ok := newTransliteration(meaning, lang, sql.NullString{}); ok {
			expression.Meaning = append(expression.Meaning, tr)
		}
	}

	return rows.Err()
}

func (c *Client) fetchLanguages(ctx context.Context) ([]types.Language, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT code, parent_code, name, alt_names FROM languages`)
	if err != nil {
		return nil, fmt.Errorf("fetch languages: %w", err)
	}
	defer rows.Close()

	var languages []types.Language
	for rows.Next() {
		var (
			code           string
			parentCode     sql.NullString
			name, altNames sql.NullString
		)
		if err := rows.Scan(&code, &parentCode, &name, &altNames); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}

		languages = append(languages, types.Language{
			Code:       code,
			ParentCode: parentCode.String,
			Names:      languageNames(name.String, altNames.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch languages: %w", err)
	}

	c.log.Info("languages in source database", "total", len(languages))

	return languages, nil
}

// languageNames splits the primary name and the comma-separated alt_names
// column into untagged transliterations, dropping blanks.
func languageNames(name, altNames string) []types.Transliteration {
	var names []types.Transliteration
	for _, value := range append([]string{name}, strings.Split(altNames, ",")...) {
		value = strings.TrimSpace(value)
		if value != "" {
			names = append(names, types.Transliteration{Value: value})
		}
	}
	return names
}
