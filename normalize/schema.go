package normalize

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

const schemaBaseURL = "https://sbomguard.l3montree.com/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[Format]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() (map[Format]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiled := make(map[Format]*jsonschema.Schema, 2)
		for _, format := range []Format{FormatCycloneDX, FormatSPDX} {
			file := fmt.Sprintf("schemas/%s.schema.json", format)
			content, err := schemaFiles.ReadFile(file)
			if err != nil {
				schemasErr = err
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
			if err != nil {
				schemasErr = err
				return
			}
			url := schemaBaseURL + string(format) + ".json"
			if err := compiler.AddResource(url, doc); err != nil {
				schemasErr = err
				return
			}
			schema, err := compiler.Compile(url)
			if err != nil {
				schemasErr = err
				return
			}
			compiled[format] = schema
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// validateShape checks that the component list of a document has the expected structure.
func validateShape(format Format, raw []byte) error {
	compiled, err := compileSchemas()
	if err != nil {
		return errors.Wrap(err, "could not compile sbom schemas")
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(shared.ErrMalformedDocument, err.Error())
	}

	if err := compiled[format].Validate(instance); err != nil {
		return errors.Wrap(shared.ErrMalformedDocument, err.Error())
	}
	return nil
}
