package provider

import (
	"fmt"
	"strings"

	"github.com/bastiangx/compmodel/pkg/model"
)

// Record is the serialized form of one completion candidate.
type Record struct {
	Name string `msgpack:"name" toml:"name"`
	// Properties holds property names such as "public" or "function".
	Properties []string `msgpack:"properties,omitempty" toml:"properties"`
	// Bits is OR'ed into the parsed Properties, for producers that send raw masks.
	Bits             uint32 `msgpack:"bits,omitempty" toml:"bits"`
	Scope            string `msgpack:"scope,omitempty" toml:"scope"`
	InheritanceDepth int    `msgpack:"depth,omitempty" toml:"depth"`
	// OutOfContext marks candidates that do not match the completion context.
	OutOfContext bool   `msgpack:"out_of_context,omitempty" toml:"out_of_context"`
	Prefix       string `msgpack:"prefix,omitempty" toml:"prefix"`
	Icon         string `msgpack:"icon,omitempty" toml:"icon"`
	Arguments    string `msgpack:"arguments,omitempty" toml:"arguments"`
	Postfix      string `msgpack:"postfix,omitempty" toml:"postfix"`
}

// Candidate converts the record into the model's candidate form.
func (r Record) Candidate() (model.Candidate, error) {
	props := model.Properties(r.Bits)
	for _, name := range r.Properties {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, ok := model.ParseProperty(name)
		if !ok {
			return model.Candidate{}, fmt.Errorf("%w: %q on %q", ErrUnknownProperty, name, r.Name)
		}
		props |= p
	}
	c := model.Candidate{
		Name:             r.Name,
		Properties:       props,
		Scope:            r.Scope,
		InheritanceDepth: r.InheritanceDepth,
	}
	c.Columns[model.PrefixColumn] = r.Prefix
	c.Columns[model.IconColumn] = r.Icon
	c.Columns[model.ScopeColumn] = r.Scope
	c.Columns[model.ArgumentsColumn] = r.Arguments
	c.Columns[model.PostfixColumn] = r.Postfix
	return c, nil
}

// RecordFromCandidate is the inverse of Record.Candidate.
func RecordFromCandidate(c model.Candidate, contextMatches bool) Record {
	return Record{
		Name:             c.Name,
		Properties:       c.Properties.Names(),
		Scope:            c.Scope,
		InheritanceDepth: c.InheritanceDepth,
		OutOfContext:     !contextMatches,
		Prefix:           c.Columns[model.PrefixColumn],
		Icon:             c.Columns[model.IconColumn],
		Arguments:        c.Columns[model.ArgumentsColumn],
		Postfix:          c.Columns[model.PostfixColumn],
	}
}
