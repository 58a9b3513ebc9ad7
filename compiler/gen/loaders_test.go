package gen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petsSDL = `
type Query {
  dogs: [Dog!]!
}

type Dog {
  name: String!
  owner: Human
}

type Human {
  name: String!
  dogs(limit: Int): [Dog!]!
  grid: [[[Int]]]
}
`

func TestInferLoaders(t *testing.T) {
	schema := mustSchema(t, petsSDL)

	t.Run("skips root types and sorts by name", func(t *testing.T) {
		got := InferLoaders(schema, &Config{})
		require.Len(t, got, 2)
		assert.Equal(t, "Dog", got[0].Name)
		assert.Equal(t, "Human", got[1].Name)
	})

	t.Run("fields keep declaration order", func(t *testing.T) {
		got := InferLoaders(schema, &Config{})
		assert.Equal(t, []LoaderField{
			{Name: "name", Return: `Scalars["String"]`, Params: "{}"},
			{Name: "owner", Return: "Maybe<Human>", Params: "{}"},
		}, got[0].Fields)
		assert.Equal(t, []LoaderField{
			{Name: "name", Return: `Scalars["String"]`, Params: "{}"},
			{Name: "dogs", Return: "Array<Dog>", Params: "HumandogsArgs"},
			{Name: "grid", Return: `Maybe<Array<Maybe<Array<Maybe<Array<Maybe<Scalars["Int"]>>>>>>>`, Params: "{}"},
		}, got[1].Fields)
	})

	t.Run("namespace prefix", func(t *testing.T) {
		got := InferLoaders(schema, &Config{NamespacedImportName: "Types"})
		assert.Equal(t, "Maybe<Types.Human>", got[0].Fields[1].Return)
		assert.Equal(t, `Scalars["String"]`, got[0].Fields[0].Return)
	})

	t.Run("overrides win over the namespace", func(t *testing.T) {
		cfg := &Config{NamespacedImportName: "Types", LoaderTypeOverrides: map[string]string{"Human": "never"}}
		got := InferLoaders(schema, cfg)
		assert.Equal(t, "Maybe<never>", got[0].Fields[1].Return)
		assert.Equal(t, "Array<Types.Dog>", got[1].Fields[1].Return)
	})
}

func TestLoadersPlugin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty interface when only root types exist", func(t *testing.T) {
		schema := mustSchema(t, `type Query { hello: String }`)
		out, err := loadersPlugin(ctx, &Input{Schema: schema, Config: (&Config{}).Normalize(nil, true)})
		require.NoError(t, err)
		assert.Contains(t, out.Content, "export interface Loaders<TContext = MercuriusContext & { reply: FastifyReply }> {\n}\n")
	})

	t.Run("one entry per type", func(t *testing.T) {
		schema := mustSchema(t, petsSDL)
		out, err := loadersPlugin(ctx, &Input{Schema: schema, Config: (&Config{}).Normalize(nil, true)})
		require.NoError(t, err)
		assert.Contains(t, out.Content, "Dog?: {\nname?: LoaderResolver<Scalars[\"String\"], Dog, {}, TContext>;\nowner?: LoaderResolver<Maybe<Human>, Dog, {}, TContext>;\n};\n")
		assert.Contains(t, out.Content, "dogs?: LoaderResolver<Array<Dog>, Human, HumandogsArgs, TContext>;")
		assert.NotContains(t, out.Content, "Query?:")
	})
}
