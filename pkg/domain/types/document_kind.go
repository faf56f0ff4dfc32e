package types

import "fmt"

// DocumentKind classifies an attachment by its purpose
type DocumentKind string

const (
	DocumentKindProtocol           DocumentKind = "protocol"
	DocumentKindComplianceEvidence DocumentKind = "compliance-evidence"
	DocumentKindCorrespondence     DocumentKind = "correspondence"
	DocumentKindRoutingCommon      DocumentKind = "routing-common"
	DocumentKindOther              DocumentKind = "other"
	DocumentKindLink               DocumentKind = "link"
)

// AllDocumentKinds returns all valid document kinds
func AllDocumentKinds() []DocumentKind {
	return []DocumentKind{
		DocumentKindProtocol,
		DocumentKindComplianceEvidence,
		DocumentKindCorrespondence,
		DocumentKindRoutingCommon,
		DocumentKindOther,
		DocumentKindLink,
	}
}

// IsValid checks if the document kind is valid
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindProtocol,
		DocumentKindComplianceEvidence,
		DocumentKindCorrespondence,
		DocumentKindRoutingCommon,
		DocumentKindOther,
		DocumentKindLink:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document kind
func (k DocumentKind) String() string {
	return string(k)
}

// ParseDocumentKind parses a string into a DocumentKind
func ParseDocumentKind(s string) (DocumentKind, error) {
	kind := DocumentKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid document kind: %s", s)
	}
	return kind, nil
}
