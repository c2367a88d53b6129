package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// CheckDocument syntax-checks a GraphQL document before it is sent to the
// platform. This is a local convenience only: the platform response stays
// the ground truth for semantic validity.
func CheckDocument(document string) error {
	_, err := parser.ParseQuery(&ast.Source{Input: document})
	if err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}
