package schema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/relabs-tech/coffeeshop/core/schema"
)

const (
	ref1 = `{ "type" : "string" ,
		      "$id" : "http://some_host.com/string.json"}`
	ref2 = `{ "$id" : "http://some_host.com/maxlength.json",
	 		  "maxLength" : 5 }`

	top_level1 = `
	{ "$id" : "http://some_host.com/top1.json",
	  "allOf" : [
		{ "$ref" : "http://some_host.com/string.json" },
		{ "$ref" : "http://some_host.com/maxlength.json" }
		]
	}`
	top_level2 = `
	{ "$id" : "http://some_host.com/top2.json",
	  "allOf" : [
 		{ "$ref" : "http://some_host.com/string.json" },
 		{ "type": "string", "minlength": 3 }
	  ]
	}`
)

func TestValidateString(t *testing.T) {
	v, err := schema.NewValidator([]string{top_level1, top_level2}, []string{ref1, ref2})
	if err != nil {
		t.Fatalf("No error expected when creating validator, got %v", err)
	}

	schemaID1 := "http://some_host.com/top1.json"
	schemaID2 := "http://some_host.com/top2.json"
	jsonShortString := `"short"`
	jsonLongString := `"a very long string"`

	// Valid json
	if err := v.ValidateString(jsonShortString, schemaID1); err != nil {
		t.Fatalf("%s is expected to be valid with schema %s. Reported error was: %v", jsonShortString, schemaID1, err)
	}

	// Invalid json
	err = v.ValidateString(jsonLongString, schemaID1)
	if err == nil {
		t.Fatalf("%s is expected to be invalid with schema %s", jsonLongString, schemaID1)
	}
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %T", err)
	}
	if len(verr.Details) == 0 {
		t.Fatal("validation error carries no details")
	}

	// Valid json
	if err := v.ValidateBytes([]byte(jsonLongString), schemaID2); err != nil {
		t.Fatalf("%s is expected to be valid with schema %s. Reported error was: %v", jsonLongString, schemaID2, err)
	}

	if err := v.ValidateString(jsonShortString, "http://some_host.com/unknown.json"); err == nil {
		t.Fatal("validation against an unknown schema must fail")
	}
}

func TestNewValidatorFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"top1.json":       {Data: []byte(top_level1)},
		"README.md":       {Data: []byte("not a schema")},
		"refs/ref1.json":  {Data: []byte(ref1)},
		"refs/ref2.json":  {Data: []byte(ref2)},
		"refs/notes.text": {Data: []byte("ignored")},
	}

	v, err := schema.NewValidatorFromFS(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasSchema("http://some_host.com/top1.json") {
		t.Fatal("top level schema was not loaded")
	}
	if v.HasSchema("http://some_host.com/string.json") {
		t.Fatal("refs must not become top level schemas")
	}
}

func TestNewValidatorFromFSWithoutRefs(t *testing.T) {
	fsys := fstest.MapFS{
		"plain.json": {Data: []byte(`{"$id": "http://some_host.com/plain.json", "type": "object"}`)},
	}
	v, err := schema.NewValidatorFromFS(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateString(`{}`, "http://some_host.com/plain.json"); err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateString(`[]`, "http://some_host.com/plain.json"); err == nil {
		t.Fatal("array must not validate as object")
	}
}

func TestNewValidatorMissingID(t *testing.T) {
	if _, err := schema.NewValidator([]string{`{"type": "string"}`}, nil); err == nil {
		t.Fatal("schema without $id must be rejected")
	}
}
