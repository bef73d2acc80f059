package repo

import "context"

// NameNotFound is substituted whenever the naming service cannot answer.
const NameNotFound = "Name Not Found"

// NameRepo resolves a display name for a SMILES string. It never fails.
type NameRepo interface {
	LookupName(ctx context.Context, structure string) string
}
