package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
)

const (
	defaultQdrantGRPCPort = 6334
	qdrantUpsertBatch     = 256

	payloadPath        = "path"
	payloadDate        = "date"
	payloadContent     = "content"
	payloadChunkIndex  = "chunk_index"
	payloadTotalChunks = "total_chunks"
	payloadModel       = "embedding_model"
)

// qdrantClient is the part of *qdrant.Client the store calls.
type qdrantClient interface {
	ListCollections(ctx context.Context) ([]string, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	DeleteCollection(ctx context.Context, name string) error
	GetCollectionInfo(ctx context.Context, name string) (*qdrant.CollectionInfo, error)
	Scroll(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Count(ctx context.Context, req *qdrant.CountPoints) (uint64, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

var _ qdrantClient = (*qdrant.Client)(nil)

// QdrantStore keeps each table in a Qdrant collection with Euclidean distance.
type QdrantStore struct {
	client qdrantClient
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port is derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	host, port, err := parseQdrantURL(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, apperr.Capability(err, "failed to create Qdrant client")
	}

	return &QdrantStore{client: client}, nil
}

// parseQdrantURL returns the host and gRPC port for an HTTP endpoint.
// The gRPC port is the HTTP port + 1, or 6334 when no port is given.
func parseQdrantURL(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := defaultQdrantGRPCPort
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// TableNames lists collections.
func (s *QdrantStore) TableNames(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, apperr.Capability(err, "failed to list collections")
	}
	return names, nil
}

// CreateTable creates a collection and uploads every record.
func (s *QdrantStore) CreateTable(ctx context.Context, name string, schema Schema, records []Record) (Table, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRecords(schema, records); err != nil {
		return nil, err
	}

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, apperr.Capability(err, "failed to check collection existence")
	}
	if exists {
		return nil, fmt.Errorf("collection %s: %w", name, apperr.ErrIndexExists)
	}

	logger.InfoContext(ctx, "creating collection", "collection", name, "vector_size", schema.Dimension)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(schema.Dimension),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return nil, apperr.Capability(err, "failed to create collection")
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: name,
		Wait:           qdrant.PtrOf(true),
		FieldName:      payloadDate,
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to index date payload", "collection", name, "error", err)
	}

	for start := 0; start < len(records); start += qdrantUpsertBatch {
		end := min(start+qdrantUpsertBatch, len(records))
		points := make([]*qdrant.PointStruct, 0, end-start)
		for _, r := range records[start:end] {
			points = append(points, toPoint(r, schema.EmbeddingModel))
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", name, "count", len(points), "error", err)
			s.discardCollection(ctx, name)
			return nil, apperr.Capability(err, "failed to upsert points")
		}
	}

	logger.InfoContext(ctx, "collection created", "collection", name, "points", len(records))
	return &qdrantTable{client: s.client, name: name, schema: schema}, nil
}

// discardCollection removes a collection whose upload did not finish, so a
// retry does not find a half-filled index. Failures are only logged.
func (s *QdrantStore) discardCollection(ctx context.Context, name string) {
	logger := contextutil.LoggerFromContext(ctx)
	// The caller's context may already be cancelled.
	if err := s.client.DeleteCollection(context.WithoutCancel(ctx), name); err != nil {
		logger.ErrorContext(ctx, "failed to remove partial collection", "collection", name, "error", err)
		return
	}
	logger.WarnContext(ctx, "removed partial collection", "collection", name)
}

// DropTable deletes a collection.
func (s *QdrantStore) DropTable(ctx context.Context, name string) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return apperr.Capability(err, "failed to check collection existence")
	}
	if !exists {
		return fmt.Errorf("collection %s: %w", name, apperr.ErrNotFound)
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return apperr.Capability(err, "failed to delete collection")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "collection deleted", "collection", name)
	return nil
}

// OpenTable reads the collection's vector size and the model recorded on its points.
func (s *QdrantStore) OpenTable(ctx context.Context, name string) (Table, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, apperr.Capability(err, "failed to check collection existence")
	}
	if !exists {
		return nil, fmt.Errorf("collection %s: %w", name, apperr.ErrNotFound)
	}

	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, apperr.Capability(err, "failed to get collection info")
	}

	var dimension int
	if config := info.GetConfig(); config != nil && config.GetParams() != nil {
		if params := config.GetParams().GetVectorsConfig().GetParams(); params != nil {
			dimension = int(params.GetSize())
		}
	}
	if dimension == 0 {
		return nil, apperr.Inconsistent("collection %s has no vector size", name)
	}

	schema := Schema{Dimension: dimension}
	sample, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: name,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, apperr.Capability(err, "failed to read collection sample")
	}
	if len(sample) > 0 {
		schema.EmbeddingModel = sample[0].GetPayload()[payloadModel].GetStringValue()
	}

	return &qdrantTable{client: s.client, name: name, schema: schema}, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

type qdrantTable struct {
	client qdrantClient
	name   string
	schema Schema
}

func (t *qdrantTable) Name() string   { return t.name }
func (t *qdrantTable) Schema() Schema { return t.schema }

func (t *qdrantTable) CountRows(ctx context.Context) (int, error) {
	n, err := t.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: t.name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, apperr.Capability(err, "failed to count points")
	}
	return int(n), nil
}

func (t *qdrantTable) Search(ctx context.Context, req SearchRequest) ([]Row, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Limit <= 0 {
		return nil, &apperr.ValidationError{Field: "limit", Message: "must be greater than 0"}
	}
	if len(req.Vector) != t.schema.Dimension {
		return nil, apperr.Inconsistent("query vector has %d dimensions, collection %s has %d", len(req.Vector), t.name, t.schema.Dimension)
	}

	limit := uint64(req.Limit)
	queryReq := &qdrant.QueryPoints{
		CollectionName: t.name,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         toQdrantFilter(req.Filter),
	}

	scoredPoints, err := t.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", t.name, "limit", req.Limit, "error", err)
		return nil, apperr.Capability(err, "failed to search points")
	}

	rows := make([]Row, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		row, err := fromPayload(point.GetPayload())
		if err != nil {
			return nil, err
		}
		// With Euclid distance Qdrant reports the distance itself as the score.
		d := point.GetScore()
		row.Distance = &d
		rows = append(rows, row)
	}

	logger.DebugContext(ctx, "search completed", "collection", t.name, "limit", req.Limit, "filter", req.Filter.String(), "results", len(rows))
	return rows, nil
}

// pointID derives a stable UUID from the chunk identity.
func pointID(path string, chunkIndex int32) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("journal-rag:%s#%d", path, chunkIndex))).String()
}

func toPoint(r Record, model string) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(r.Path, r.ChunkIndex)),
		Vectors: qdrant.NewVectors(r.Embedding...),
		Payload: map[string]*qdrant.Value{
			payloadPath:        qdrant.NewValueString(r.Path),
			payloadDate:        qdrant.NewValueInt(int64(r.Date)),
			payloadContent:     qdrant.NewValueString(r.Content),
			payloadChunkIndex:  qdrant.NewValueInt(int64(r.ChunkIndex)),
			payloadTotalChunks: qdrant.NewValueInt(int64(r.TotalChunks)),
			payloadModel:       qdrant.NewValueString(model),
		},
	}
}

func toQdrantFilter(f Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	r := &qdrant.Range{}
	if f.DateFrom != nil {
		r.Gte = qdrant.PtrOf(float64(*f.DateFrom))
	}
	if f.DateTo != nil {
		r.Lte = qdrant.PtrOf(float64(*f.DateTo))
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewRange(payloadDate, r)},
	}
}

// fromPayload rebuilds a row; every column is required.
func fromPayload(payload map[string]*qdrant.Value) (Row, error) {
	var row Row

	str := func(key string) (string, error) {
		v, ok := payload[key]
		if !ok || v == nil {
			return "", apperr.Inconsistent("point payload is missing %q", key)
		}
		s, ok := v.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			return "", apperr.Inconsistent("point payload %q is not a string", key)
		}
		return s.StringValue, nil
	}
	num := func(key string) (int32, error) {
		v, ok := payload[key]
		if !ok || v == nil {
			return 0, apperr.Inconsistent("point payload is missing %q", key)
		}
		switch n := v.GetKind().(type) {
		case *qdrant.Value_IntegerValue:
			return int32(n.IntegerValue), nil
		case *qdrant.Value_DoubleValue:
			return int32(n.DoubleValue), nil
		default:
			return 0, apperr.Inconsistent("point payload %q is not a number", key)
		}
	}

	var err error
	if row.Path, err = str(payloadPath); err != nil {
		return Row{}, err
	}
	if row.Content, err = str(payloadContent); err != nil {
		return Row{}, err
	}
	if row.Date, err = num(payloadDate); err != nil {
		return Row{}, err
	}
	if row.ChunkIndex, err = num(payloadChunkIndex); err != nil {
		return Row{}, err
	}
	if row.TotalChunks, err = num(payloadTotalChunks); err != nil {
		return Row{}, err
	}
	return row, nil
}

var _ Store = (*QdrantStore)(nil)
