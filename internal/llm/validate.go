package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds *jsonschema.Schema values keyed by Schema.Name.
var compiled sync.Map

// Validate checks doc against s. A nil schema accepts anything. Failures,
// including a schema that does not compile, are *ErrSchemaMismatch.
func Validate(s *Schema, doc []byte) error {
	if s == nil {
		return nil
	}
	mismatch := func(err error) error {
		return &ErrSchemaMismatch{Schema: s.Name, Content: string(doc), Err: err}
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return mismatch(fmt.Errorf("invalid JSON: %w", err))
	}
	sch, err := s.compile()
	if err != nil {
		return mismatch(err)
	}
	if err := sch.Validate(v); err != nil {
		return mismatch(err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if c, ok := compiled.Load(s.Name); ok {
		return c.(*jsonschema.Schema), nil
	}

	// The compiler expects values as produced by its own decoder, so the
	// Go map goes through JSON once.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %q: %w", s.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("load schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
