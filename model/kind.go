package model

import (
	"fmt"
	"strings"
)

/*
Kind is the kind of a resource a local evaluator exists for. The set is
closed: every Kind has exactly one Evaluator implementation.
*/
type Kind int

// Supported kinds
const (
	KindModel Kind = iota + 1
	KindEnsemble
	KindLogisticRegression
	KindDeepnet
)

// Kinds lists every supported kind
var Kinds = []Kind{KindModel, KindEnsemble, KindLogisticRegression, KindDeepnet}

var kindNames = map[Kind]string{
	KindModel:              "model",
	KindEnsemble:           "ensemble",
	KindLogisticRegression: "logisticregression",
	KindDeepnet:            "deepnet",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

/*
ParseKind takes the name of a kind as used in resource ids and returns
the Kind, or an error if it is not a supported kind.
*/
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q, expected one of %s", name, knownKinds())
}

/*
KindOf takes a resource id of the form "kind/id" and returns its Kind.
*/
func KindOf(resourceID string) (Kind, error) {
	i := strings.Index(resourceID, "/")
	if i <= 0 || i == len(resourceID)-1 {
		return 0, fmt.Errorf("malformed resource id %q", resourceID)
	}
	return ParseKind(resourceID[:i])
}

func knownKinds() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
