// Package compilecommands implements CompileCommands:
// an immutable index over a compile_commands.json file, with lookup
// supporting header-to-source fallback and per-language argument
// filtering.
package compilecommands

import (
	"encoding/json"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compileCommandsSchemaDoc is a minimal schema describing the expected
// shape of a compile_commands.json document: an array of objects whose
// file/directory/command members, where present, are strings. It
// requires none of those members and accepts an empty array; entries
// lacking one are skipped later by the parser. Used as a defensive
// pre-validation pass before indexing.
const compileCommandsSchemaDoc = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "file": {"type": "string"},
      "directory": {"type": "string"},
      "command": {"type": "string"}
    }
  }
}`

// ValidateSchema checks raw against the compile_commands.json shape
// schema, grounded on the jsonschema.Compiler/AddResource/Compile
// pattern used throughout the retrieval pack's contract-validation code.
// Returns InvalidData on any schema violation or malformed JSON.
func ValidateSchema(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ferr.Wrap(ferr.InvalidData, err, "parsing compile_commands.json")
	}
	var schemaDoc any
	if err := json.Unmarshal([]byte(compileCommandsSchemaDoc), &schemaDoc); err != nil {
		return ferr.Wrap(ferr.Io, err, "parsing embedded compile_commands schema")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("compile_commands.schema.json", schemaDoc); err != nil {
		return ferr.Wrap(ferr.Io, err, "adding compile_commands schema resource")
	}
	schema, err := compiler.Compile("compile_commands.schema.json")
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "compiling compile_commands schema")
	}
	if err := schema.Validate(doc); err != nil {
		return ferr.Wrap(ferr.InvalidData, err, "compile_commands.json does not match expected shape")
	}
	return nil
}
