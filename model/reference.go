package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/antoniomachine/bigml/docstore"
)

// ReferenceForm tells which of its forms a Reference holds.
type ReferenceForm int

const (
	// FormDocument is a reference carrying the document itself
	FormDocument ReferenceForm = iota
	// FormResource is a reference by resource id
	FormResource
	// FormPath is a reference to a document file
	FormPath
)

var formNames = map[ReferenceForm]string{
	FormDocument: "document",
	FormResource: "store",
	FormPath:     "path",
}

func (f ReferenceForm) String() string {
	return formNames[f]
}

/*
Reference points to a model document: it carries the document, a
resource id to look up, or the path of a file holding the document.
*/
type Reference struct {
	Form     ReferenceForm
	Document []byte
	ID       string
	Path     string
}

// DocumentRef returns a Reference carrying the given document.
func DocumentRef(doc []byte) Reference {
	return Reference{Form: FormDocument, Document: doc}
}

// ResourceRef returns a Reference to the resource with the given id.
func ResourceRef(id string) Reference {
	return Reference{Form: FormResource, ID: id}
}

// PathRef returns a Reference to the document file at the given path.
func PathRef(path string) Reference {
	return Reference{Form: FormPath, Path: path}
}

func (r Reference) String() string {
	switch r.Form {
	case FormResource:
		return r.ID
	case FormPath:
		return r.Path
	}
	var doc Document
	if err := doc.decode(r.Document); err == nil && doc.Resource != "" {
		return fmt.Sprintf("document of %s", doc.Resource)
	}
	return "inline document"
}

/*
Document is a resolved resource document: its resource id and the
object describing the model.
*/
type Document struct {
	Resource string
	Object   json.RawMessage
}

/*
ParseDocument takes a JSON resource document and returns it as a
Document. The document is either an object with "resource" and "object"
keys or the object itself carrying a "resource" key.
*/
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := doc.decode(data); err != nil {
		return nil, err
	}
	if doc.Resource == "" {
		return nil, fmt.Errorf("document has no resource id")
	}
	return doc, nil
}

func (d *Document) decode(data []byte) error {
	jd := &struct {
		Resource string          `json:"resource"`
		Object   json.RawMessage `json:"object"`
	}{}
	if err := json.Unmarshal(data, jd); err != nil {
		return fmt.Errorf("decoding document: %v", err)
	}
	d.Resource = jd.Resource
	d.Object = jd.Object
	if len(d.Object) == 0 || string(d.Object) == "null" {
		d.Object = data
	}
	return nil
}

/*
Kind returns the Kind of the document's resource.
*/
func (d *Document) Kind() (Kind, error) {
	return KindOf(d.Resource)
}

/*
Resolver turns a Reference into the Document it points to.
*/
type Resolver interface {
	Resolve(ctx context.Context, ref Reference) (*Document, error)
}

/*
StoreResolver resolves documents carried by the reference, files on the
local filesystem and resource ids found in a docstore.Store. A nil Store
fails to resolve resource ids.
*/
type StoreResolver struct {
	Store docstore.Store
}

// Resolve takes a Reference and returns the Document it points to.
func (sr *StoreResolver) Resolve(ctx context.Context, ref Reference) (*Document, error) {
	var data []byte
	var err error
	switch ref.Form {
	case FormDocument:
		data = ref.Document
	case FormPath:
		data, err = ioutil.ReadFile(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("reading document: %v", err)
		}
	case FormResource:
		if sr.Store == nil {
			return nil, fmt.Errorf("no document store to look up %s", ref.ID)
		}
		data, err = sr.Store.Get(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown reference form %d", int(ref.Form))
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if ref.Form == FormResource && doc.Resource != ref.ID {
		return nil, fmt.Errorf("store returned document of %s for %s", doc.Resource, ref.ID)
	}
	return doc, nil
}
