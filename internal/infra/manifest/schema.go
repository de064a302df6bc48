// Where: internal/infra/manifest/schema.go
// What: JSON schema validation for cargo manifests.
// Why: Reject structurally invalid manifests with precise locations before decoding.
package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const schemaURL = "https://cargo-builder.local/manifest.schema.json"

//go:embed schema/manifest.schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func validateSchema(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return failure.Configuration("convert manifest yaml to json: %v", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return failure.Configuration("decode manifest json: %v", err)
	}

	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("%w: %w", failure.ErrConfiguration, err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
