package schema_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulab/shopify-toolkit/internal/schema"
)

const testSDL = `
"""A sellable product."""
type Product {
  id: ID!
  title: String!
  status: ProductStatus!
  totalInventory: Int
  createdAt: DateTime!
  onlineStoreUrl: URL
}

"""The possible statuses of a product."""
enum ProductStatus {
  ACTIVE
  ARCHIVED
  DRAFT
}

type Collection {
  id: ID!
  title: String!
}

type Query {
  product(id: ID!): Product
}
`

// flatten collapses gofmt's column alignment so assertions do not depend
// on exact spacing.
func flatten(src []byte) string {
	return regexp.MustCompile(`[ \t]+`).ReplaceAllString(string(src), " ")
}

func TestGenerate(t *testing.T) {
	out, err := schema.Generate([]byte(testSDL), schema.Options{})
	require.NoError(t, err)
	src := flatten(out)

	assert.True(t, strings.HasPrefix(src, "// Code generated by shopify-toolkit schema generate. DO NOT EDIT."))
	assert.Contains(t, src, "package schema")
	assert.Contains(t, src, "type Product struct {")
	assert.Contains(t, src, "type Collection struct {")
	assert.NotContains(t, src, "type Query struct")

	// Field naming and json tags.
	assert.Contains(t, src, "ID string `json:\"id\"`")
	assert.Contains(t, src, "CreatedAt string `json:\"createdAt\"`")
	assert.Contains(t, src, "OnlineStoreURL string `json:\"onlineStoreUrl\"`")

	// Nullable Int becomes a pointer.
	assert.Contains(t, src, "TotalInventory *int `json:\"totalInventory\"`")

	// Enum const block.
	assert.Contains(t, src, "type ProductStatus string")
	assert.Contains(t, src, `ProductStatusActive ProductStatus = "ACTIVE"`)
	assert.Contains(t, src, `ProductStatusDraft ProductStatus = "DRAFT"`)
}

func TestGenerateSelectedTypes(t *testing.T) {
	out, err := schema.Generate([]byte(testSDL), schema.Options{
		Package: "shopify",
		Types:   []string{"Collection"},
	})
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "package shopify")
	assert.Contains(t, src, "type Collection struct {")
	assert.NotContains(t, src, "type Product struct")
	assert.NotContains(t, src, "type ProductStatus string")
}

func TestGenerateErrors(t *testing.T) {
	_, err := schema.Generate([]byte("type Broken {"), schema.Options{})
	require.Error(t, err)

	_, err = schema.Generate([]byte(testSDL), schema.Options{Types: []string{"Missing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}
