package settings

import (
	"encoding/json"
	"sync"

	"github.com/containifyci/foundry/pkg/ferr"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemas holds per-subtree JSON-Schema validators, registered through
// RegisterSchema by whichever settings consumer describes that subtree's
// shape. A subtree with no registered schema is not validated.
var (
	schemasMu sync.Mutex
	schemas   = make(map[string]*jsonschema.Schema)
)

// RegisterSchema compiles rawSchema and associates it with subtree. Any
// subsequent Set call against that subtree validates the whole section
// (not just the single key) against it.
func RegisterSchema(subtree string, rawSchema []byte) error {
	var doc any
	if err := json.Unmarshal(rawSchema, &doc); err != nil {
		return ferr.Wrap(ferr.InvalidData, err, "parsing settings schema for "+subtree)
	}
	compiler := jsonschema.NewCompiler()
	resourceID := "settings/" + subtree + ".json"
	if err := compiler.AddResource(resourceID, doc); err != nil {
		return ferr.Wrap(ferr.Io, err, "adding settings schema resource for "+subtree)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return ferr.Wrap(ferr.Io, err, "compiling settings schema for "+subtree)
	}

	schemasMu.Lock()
	defer schemasMu.Unlock()
	schemas[subtree] = compiled
	return nil
}

func (s *Store) validate(subtree, key string, value any) error {
	schemasMu.Lock()
	schema, ok := schemas[subtree]
	schemasMu.Unlock()
	if !ok {
		return nil
	}

	s.mu.Lock()
	section := make(map[string]any, len(s.tree[subtree])+1)
	for k, v := range s.tree[subtree] {
		section[k] = v
	}
	s.mu.Unlock()
	section[key] = value

	if err := schema.Validate(section); err != nil {
		return ferr.Wrap(ferr.InvalidData, err, "settings value for "+subtree+"."+key+" fails schema validation")
	}
	return nil
}
