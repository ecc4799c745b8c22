package gateway

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/scenario.json
var scenarioSchemaJSON []byte

//go:embed schemas/interaction.json
var interactionSchemaJSON []byte

//go:embed schemas/plan.json
var planSchemaJSON []byte

var (
	scenarioSchema    = mustSchema(scenarioSchemaJSON)
	interactionSchema = mustSchema(interactionSchemaJSON)
	planSchema        = mustSchema(planSchemaJSON)
)

// mustSchema compiles an embedded schema. Embedded assets are fixed at
// build time, so a compile failure is a programming error.
func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("gateway: bad embedded schema: %v", err))
	}
	return s
}

// validateSchema checks raw model output against a compiled schema.
// Violations are collapsed into a single error listing every failed field.
func validateSchema(schema *gojsonschema.Schema, raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var fields []string
	for _, e := range result.Errors() {
		fields = append(fields, e.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(fields, "; "))
}
