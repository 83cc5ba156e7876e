package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			initCacheCollection(ctx, quadrantInstance)
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
	}

	err = createCollection(context.Background(), client, config.DefaultCollectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", config.DefaultCollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, vectorFloat []float32) ([]docModel.SearchResult, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(config.SearchResultLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	results := make([]docModel.SearchResult, 0, len(result))
	for _, hit := range result {
		score := float64(hit.Score)
		results = append(results, docModel.SearchResult{
			DocumentId: hit.Payload["source_doc_id"].GetStringValue(),
			FileName:   hit.Payload["file_name"].GetStringValue(),
			Score:      &score,
			Text:       hit.Payload["content"].GetStringValue(),
			Metadata: docModel.SourceMetadata{
				Page:  int(hit.Payload["chunk_index"].GetIntegerValue()),
				Title: hit.Payload["title"].GetStringValue(),
				Extra: map[string]string{
					"ingested_at": strconv.FormatInt(hit.Payload["ingested_at"].GetIntegerValue(), 10),
					"source_type": hit.Payload["source_type"].GetStringValue(),
				},
			},
		})
	}

	loggr.Debug("Search finished", "matches", len(results))
	return results, nil
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, doc docModel.Document, chunks []docModel.EmbeddedChunk) error {
	qdrantPoints := make([]*qdrant.PointStruct, 0, len(chunks))

	for i, chunk := range chunks {
		//chunks whose embedding failed stay in the document store but
		//cannot be indexed
		if len(chunk.Embedding) == 0 {
			continue
		}

		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(chunk.Embedding...),

			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Text,
				"chunk_index":   i,
				"source_doc_id": doc.Id,
				"file_name":     doc.FileName,
				"title":         doc.FileName,
				"source_type":   string(doc.SourceType),
				"ingested_at":   doc.IngestedAt.Unix(),
			}),
		})
	}

	if len(qdrantPoints) == 0 {
		logger.Warn("No embeddable chunks in batch, nothing upserted", "doc", doc.Id)
		return nil
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil

}

func (db *ClientHolder) DeleteDocument(ctx context.Context, collectionName string, docId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source_doc_id", docId)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {

		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
