package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Client -> server message types and their schema files.
var requestSchemas = map[string]string{
	TypeHello:         "hello.schema.json",
	TypeQueryInfo:     "query_info.schema.json",
	TypeQueryStrategy: "query_strategy.schema.json",
	TypeValidate:      "validate.schema.json",
}

var (
	schemasOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		out := make(map[string]*jsonschema.Schema, len(requestSchemas))
		for typ, name := range requestSchemas {
			b, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = err
				return
			}
			if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
				compileErr = err
				return
			}
			s, err := c.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compile %s: %w", name, err)
				return
			}
			out[typ] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// ValidateRequest checks a raw client message against the schema of its
// type. Unknown types are rejected.
func ValidateRequest(raw []byte) error {
	base, err := DecodeBase(raw)
	if err != nil {
		return err
	}
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}
	s, ok := schemas[base.Type]
	if !ok {
		return fmt.Errorf("unknown message type %q", base.Type)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
