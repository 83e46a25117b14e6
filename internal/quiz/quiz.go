// Package quiz parses, validates and scores the skills quiz produced by the
// completion backend.
package quiz

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schema = mustLoadSchema()

func mustLoadSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("quiz: invalid embedded schema: %v", err))
	}
	return s
}

// Spec is an ordered list of skill blocks.
type Spec []SkillBlock

// SkillBlock groups the questions generated for one skill.
type SkillBlock struct {
	Skill     string     `json:"skill"`
	Questions []Question `json:"questions"`
}

// Question is a multiple-choice question keyed by option letter.
type Question struct {
	Text    string            `json:"question"`
	Options map[string]string `json:"options"`
	Correct string            `json:"correct"`
}

// OptionLetters returns the question's option letters in order.
func (q Question) OptionLetters() []string {
	letters := make([]string, 0, len(q.Options))
	for k := range q.Options {
		letters = append(letters, k)
	}
	sort.Strings(letters)
	return letters
}

// QuestionCount returns the number of questions across all skills.
func (s Spec) QuestionCount() int {
	n := 0
	for _, block := range s {
		n += len(block.Questions)
	}
	return n
}

// IndentedJSON renders the spec the way it is embedded in prompts and shown in
// the debug view.
func (s Spec) IndentedJSON() string {
	if s == nil {
		s = Spec{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ParseError reports a reply that is not valid JSON for a quiz. Raw holds the
// reply exactly as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("quiz json parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StructureError reports syntactically valid JSON that does not match the quiz
// structure.
type StructureError struct {
	Raw    string
	Fields []FieldError
}

func (e *StructureError) Error() string {
	var sb strings.Builder
	sb.WriteString("quiz structure invalid:")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf(" %s: %s;", f.Field, f.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// StripCodeFence removes a surrounding markdown code fence, with or without a
// language tag.
func StripCodeFence(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	if nl := strings.IndexByte(clean, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(clean[:nl]); !strings.ContainsAny(tag, "[{") {
			clean = clean[nl+1:]
		}
	}
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// ParseQuiz decodes the reply strictly. No repair is attempted beyond removing
// a code fence.
func ParseQuiz(text string) (Spec, error) {
	body := StripCodeFence(text)
	dec := json.NewDecoder(strings.NewReader(body))
	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Raw: text, Err: errors.New("unexpected data after quiz array")}
	}
	return spec, nil
}

// Validate checks raw JSON against the quiz schema.
func Validate(raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ParseError{Raw: string(raw), Err: err}
	}
	if result.Valid() {
		return nil
	}
	structErr := &StructureError{Raw: string(raw), Fields: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		structErr.Fields = append(structErr.Fields, FieldError{Field: field, Message: desc.Description()})
	}
	return structErr
}

// Decode parses and validates a reply. Correct letters are normalized to lower case.
func Decode(text string) (Spec, error) {
	body := []byte(StripCodeFence(text))
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if err := Validate(body); err != nil {
		var structErr *StructureError
		var parseErr *ParseError
		switch {
		case errors.As(err, &structErr):
			structErr.Raw = text
		case errors.As(err, &parseErr):
			parseErr.Raw = text
		}
		return nil, err
	}
	spec, err := ParseQuiz(text)
	if err != nil {
		return nil, err
	}
	if fields := answerKeyCollisions(spec); len(fields) > 0 {
		return nil, &StructureError{Raw: text, Fields: fields}
	}
	for i := range spec {
		for j := range spec[i].Questions {
			q := &spec[i].Questions[j]
			q.Correct = strings.ToLower(strings.TrimSpace(q.Correct))
		}
	}
	return spec, nil
}

// answerKeyCollisions reports questions whose QuestionKey is already taken by an
// earlier question. Repeated skills and skills that differ only by a space or
// underscore would otherwise share one answer.
func answerKeyCollisions(spec Spec) []FieldError {
	owners := make(map[string]string)
	var fields []FieldError
	for i, block := range spec {
		for j := range block.Questions {
			key := QuestionKey(block.Skill, j)
			if owner, taken := owners[key]; taken {
				fields = append(fields, FieldError{
					Field:   fmt.Sprintf("%d.skill", i),
					Message: fmt.Sprintf("answer key %q is already used by skill %q", key, owner),
				})
				continue
			}
			owners[key] = block.Skill
		}
	}
	return fields
}
