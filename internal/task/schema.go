package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hpungsan/chronicle/internal/errors"
)

// SchemaJSON is the JSON Schema pinning the payload contract.
//
//go:embed schema/task.schema.json
var SchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var payloadSchema = mustCompileSchema(SchemaJSON, "task.schema.json")

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Validate checks a payload against the embedded schema.
func Validate(p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.NewInternal(err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks raw payload JSON against the embedded schema.
// Violations are returned as a validation error listing each failing location.
func ValidateJSON(data []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.NewValidation(fmt.Sprintf("invalid task JSON: %v", err))
	}

	problems := schemaProblems(payloadSchema, instance)
	if len(problems) == 0 {
		return nil
	}
	verr := errors.NewValidation("task payload does not match schema: " + strings.Join(problems, "; "))
	verr.Details = map[string]any{"problems": problems}
	return verr
}

func schemaProblems(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var problems []string
	collectSchemaErrors(ve, &problems)
	return problems
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
