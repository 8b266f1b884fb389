package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema_context.yaml
var schemaContextYAML []byte

// ColumnContext describes one column for the model.
type ColumnContext struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// TableContext describes one table for the model.
type TableContext struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Columns     []ColumnContext `yaml:"columns"`
}

// SchemaContext is the fixed instruction block prepended to every question.
type SchemaContext struct {
	Intro       string         `yaml:"intro"`
	Tables      []TableContext `yaml:"tables"`
	JoinHint    string         `yaml:"join_hint"`
	FraudRate   string         `yaml:"fraud_rate"`
	Contract    string         `yaml:"contract"`
	Suggestions []string       `yaml:"suggestions"`
}

// LoadSchemaContext parses the embedded schema description.
func LoadSchemaContext() (*SchemaContext, error) {
	return ParseSchemaContext(schemaContextYAML)
}

// ParseSchemaContext parses a schema description document.
func ParseSchemaContext(data []byte) (*SchemaContext, error) {
	var sc SchemaContext
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse schema context: %w", err)
	}
	if len(sc.Tables) == 0 {
		return nil, fmt.Errorf("schema context has no tables")
	}
	if strings.TrimSpace(sc.Contract) == "" {
		return nil, fmt.Errorf("schema context has no response contract")
	}
	return &sc, nil
}

// Render writes the instruction block with every table qualified by
// qualifiedSchema (DATABASE.SCHEMA).
func (sc *SchemaContext) Render(qualifiedSchema string) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(sc.Intro))
	b.WriteString("\n\n")

	for i, table := range sc.Tables {
		fmt.Fprintf(&b, "%d. %s.%s - %s\n", i+1, qualifiedSchema, table.Name, table.Description)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "   - %s (%s): %s\n", col.Name, col.Type, strings.TrimSpace(col.Description))
		}
		b.WriteString("\n")
	}

	if sc.JoinHint != "" {
		fmt.Fprintf(&b, "To join transactions with fraud labels use: %s\n\n",
			strings.ReplaceAll(sc.JoinHint, "{schema}", qualifiedSchema))
	}
	if sc.FraudRate != "" {
		fmt.Fprintf(&b, "To compute the fraud rate use: %s\n\n", sc.FraudRate)
	}

	b.WriteString(strings.TrimSpace(sc.Contract))
	b.WriteString("\n")
	return b.String()
}

// BuildQuestionPrompt combines the rendered schema block with the user's
// literal question.
func BuildQuestionPrompt(schemaBlock, question string) string {
	return fmt.Sprintf("%s\n\nUser question: %s\n\nGenerate the response JSON:", schemaBlock, question)
}
