package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks journal-rag/internal/llm Embedder

import "context"

// Embedder turns text into fixed-length vectors. Implementations must be
// deterministic for a fixed model so that index and query vectors compare.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the length of every vector returned by Embed.
	Dimensions() int
	// ModelName identifies the model; a table is tied to one model.
	ModelName() string
}
