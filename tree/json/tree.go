/*
Package json builds trees from their JSON model documents.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/antoniomachine/bigml/field"
	"github.com/antoniomachine/bigml/tree"
)

/*
ReadTree takes an io.Reader and decodes a tree from it.
A tree document is a JSON object with the following fields:
  - "fields": the field dictionary, keyed by field id.
  - "root": the root node document (see DecodeNode). When absent the
    object itself is taken as the root node.
An error is returned if the JSON cannot be read or decoded, or if a
predicate refers to a field the dictionary does not declare.
*/
func ReadTree(r io.Reader) (*tree.Tree, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %v", err)
	}
	return DecodeTree(data)
}

// DecodeTree decodes a tree document like ReadTree does.
func DecodeTree(data []byte) (*tree.Tree, error) {
	jt := &struct {
		Fields json.RawMessage `json:"fields"`
		Root   json.RawMessage `json:"root"`
	}{}
	if err := json.Unmarshal(data, jt); err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	if len(jt.Fields) == 0 {
		return nil, fmt.Errorf("decoding tree: no fields available")
	}
	fields, err := field.DecodeJSON(jt.Fields)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	return DecodeTreeWithFields(rootOr(jt.Root, data), fields)
}

/*
DecodeTreeWithFields takes the raw JSON of a root node and the fields of
the model it belongs to and returns the validated tree.
*/
func DecodeTreeWithFields(root []byte, fields field.Fields) (*tree.Tree, error) {
	n, err := DecodeNode(root)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	t := tree.New(n, fields)
	if err = t.Validate(); err != nil {
		return nil, fmt.Errorf("decoding tree: %v", err)
	}
	return t, nil
}

func rootOr(root json.RawMessage, doc []byte) []byte {
	if len(root) > 0 {
		return root
	}
	return doc
}
