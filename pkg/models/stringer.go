package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// IssueType
func (t IssueType) String() string { return string(t) }
