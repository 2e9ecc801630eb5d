// Package types defines the record shapes exchanged between the relational
// extraction layer and the graph load engine.
package types

// ExpressionType classifies an expression record.
type ExpressionType string

const (
	ExpressionTypeWord       ExpressionType = "word"
	ExpressionTypeName       ExpressionType = "name"
	ExpressionTypeExpression ExpressionType = "expression"
	ExpressionTypeStory      ExpressionType = "story"
)

// PartOfSpeech is the grammatical category of a word expression.
// The empty string means the source record carried none.
type PartOfSpeech string

const (
	PartOfSpeechAdjective PartOfSpeech = "adjective"
	PartOfSpeechAdverb    PartOfSpeech = "adverb"
	PartOfSpeechNoun      PartOfSpeech = "noun"
	PartOfSpeechVerb      PartOfSpeech = "verb"
)

// Transliteration is one localized rendering of a name, title, translation
// or meaning: a text value plus optional language and script tags.
// Empty LangCode/ScriptCode means the rendering is untagged.
type Transliteration struct {
	Value      string
	LangCode   string
	ScriptCode string
}

// Tagged reports whether the transliteration carries a language tag.
func (t Transliteration) Tagged() bool {
	return t.LangCode != ""
}

// Alphabet is one writing-system record. ScriptCode is empty when the
// source does not associate the alphabet with a script.
type Alphabet struct {
	Code       string
	ScriptCode string
	Letters    string
	Names      []Transliteration
}

// Language is one language record. ParentCode is empty for root languages;
// a non-empty ParentCode refers to another language's Code and the resulting
// parent links form a forest.
type Language struct {
	Code       string
	ParentCode string
	Names      []Transliteration
}

// Expression is one dictionary entry: a word, name, expression or story.
// UUID is assigned by the source and stable across runs. PartOfSpeech is
// empty when absent. Languages holds language codes, not node identifiers.
type Expression struct {
	UUID                 string
	Type                 ExpressionType
	PartOfSpeech         PartOfSpeech
	Titles               []Transliteration
	Languages            []string
	LiteralTranslation   []Transliteration
	PracticalTranslation []Transliteration
	Meaning              []Transliteration
}

// Story is reserved for long-form content; the source does not emit any yet.
type Story struct {
	UUID   string
	Titles []Transliteration
}

// Dataset is the full extracted snapshot handed to the load engine.
type Dataset struct {
	Alphabets   []Alphabet
	Expressions []Expression
	Languages   []Language
	Stories     []Story
}
