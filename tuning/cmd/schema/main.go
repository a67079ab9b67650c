// Command schema reflects the tuning document into a JSON schema for
// validation and editor tooling.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"apex-arena/sim/tuning"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schema: missing -out path")
	}

	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	schema := reflector.ReflectFromType(reflect.TypeOf(tuning.Config{}))
	if schema == nil {
		log.Fatal("schema: failed to reflect tuning config")
	}
	schema.Title = "Arena Tuning Document"
	schema.Description = "Designer-authored balance values consumed by the simulation loop."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("schema: marshal: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schema: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schema: write schema: %v", err)
	}
}
