package catalog

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the catalog file format.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&File{})
	schema.Title = "mirrorer catalog"
	schema.Description = "Users replayed by the simulator, grouped by catalog domain."
	return json.MarshalIndent(schema, "", "  ")
}
