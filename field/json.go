package field

import (
	"encoding/json"
	"fmt"
)

/*
UnmarshalJSON reads a field summary. Categories come in documents as a
list of [name, count] pairs; only the names are kept.
*/
func (s *Summary) UnmarshalJSON(data []byte) error {
	js := struct {
		Categories [][]interface{}     `json:"categories"`
		TermForms  map[string][]string `json:"term_forms"`
	}{}
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	s.TermForms = js.TermForms
	s.Categories = nil
	for i, c := range js.Categories {
		if len(c) == 0 {
			return fmt.Errorf("category %d of summary is empty", i)
		}
		s.Categories = append(s.Categories, fmt.Sprintf("%v", c[0]))
	}
	return nil
}

/*
DecodeJSON takes the raw JSON of a fields object (field id to field
declaration) and returns the Fields it holds with their IDs set.
*/
func DecodeJSON(data []byte) (Fields, error) {
	fs := Fields{}
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("decoding fields: %v", err)
	}
	for id, f := range fs {
		if f == nil {
			return nil, fmt.Errorf("decoding fields: field %s is null", id)
		}
		f.ID = id
		if f.Name == "" {
			f.Name = id
		}
	}
	return fs, nil
}
