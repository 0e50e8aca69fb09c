package stub

import "context"

// DefinitionSource is the port for loading stub definitions from an external
// seed, such as a directory of YAML files.
type DefinitionSource interface {
	LoadAll(ctx context.Context) ([]*Definition, error)
}
