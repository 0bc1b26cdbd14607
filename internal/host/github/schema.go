package github

import (
	"bytes"
	_ "embed"
	"sync"

	"emperror.dev/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed release.schema.json
var releaseSchemaJSON []byte

const releaseSchemaURL = "urn:dl-kaoriya-vim:release.schema.json"

var (
	releaseSchemaOnce sync.Once
	releaseSchema     *jsonschema.Schema
	releaseSchemaErr  error
)

func loadReleaseSchema() (*jsonschema.Schema, error) {
	releaseSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(releaseSchemaJSON))
		if err != nil {
			releaseSchemaErr = errors.Wrap(err, "parse embedded release schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(releaseSchemaURL, doc); err != nil {
			releaseSchemaErr = errors.Wrap(err, "add release schema")
			return
		}
		releaseSchema, releaseSchemaErr = c.Compile(releaseSchemaURL)
		if releaseSchemaErr != nil {
			releaseSchemaErr = errors.Wrap(releaseSchemaErr, "compile release schema")
		}
	})
	return releaseSchema, releaseSchemaErr
}

// ValidateRelease checks a raw latest-release payload against the fields the
// downloader depends on.
func ValidateRelease(body []byte) error {
	sch, err := loadReleaseSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "parse release JSON")
	}
	if err := sch.Validate(inst); err != nil {
		return errors.Wrap(err, "unexpected release payload")
	}
	return nil
}
