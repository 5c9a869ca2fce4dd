/*
Package yaml reads field dictionaries, also known as metadata, from
YAML documents.
*/
package yaml

import (
	"fmt"
	"io/ioutil"

	"github.com/antoniomachine/bigml/field"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadFields takes a slice of bytes with a field dictionary in YAML and
returns the fields parsed from it or an error.
The YAML is expected to be an object containing a fields property whose
value is an object with a property per field id. Each field is either
a string with its optype (the id doubles as its name) or an object with
name, optype and optional column_number, term_analysis, item_analysis
and summary properties.
*/
func ReadFields(md []byte) (field.Fields, error) {
	metadata := struct {
		Fields map[string]interface{}
	}{}
	err := yaml.Unmarshal(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml fields: %v", err)
	}
	if metadata.Fields == nil {
		return nil, fmt.Errorf("metadata file has no field information")
	}
	fields := make(field.Fields, len(metadata.Fields))
	for id, decl := range metadata.Fields {
		switch d := decl.(type) {
		case string:
			fields[id] = &field.Field{ID: id, Name: id, Optype: field.Optype(d)}
		case map[interface{}]interface{}:
			raw, err := yaml.Marshal(d)
			if err != nil {
				return nil, fmt.Errorf("parsing field %s: %v", id, err)
			}
			f := &field.Field{}
			if err = yaml.Unmarshal(raw, f); err != nil {
				return nil, fmt.Errorf("parsing field %s: %v", id, err)
			}
			f.ID = id
			if f.Name == "" {
				f.Name = id
			}
			fields[id] = f
		default:
			return nil, fmt.Errorf("invalid field declaration of type %T", decl)
		}
	}
	for id, f := range fields {
		switch f.Optype {
		case field.Numeric, field.Categorical, field.Text, field.Items, field.Datetime:
		default:
			return nil, fmt.Errorf("field %s has unknown optype %q", id, f.Optype)
		}
	}
	return fields, nil
}

/*
ReadFieldsFromFile takes a filepath string, reads its contents and uses
ReadFields to parse it and return the parsed fields or an error.
*/
func ReadFieldsFromFile(filepath string) (field.Fields, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading fields yml file %s: %v", filepath, err)
	}
	fields, err := ReadFields(md)
	if err != nil {
		err = fmt.Errorf("parsing fields yml file %s: %v", filepath, err)
	}
	return fields, err
}
