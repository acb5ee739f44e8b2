package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

type QdrantService interface {
	InitCollection() error
	UpsertAnswer(ctx context.Context, questionID, setID, question, answer string, embedding []float32) error
	SearchSimilarAnswers(ctx context.Context, queryEmbedding []float32, limit int) ([]AnswerHit, error)
	DeleteSet(ctx context.Context, setID string) error
}

// AnswerHit is one question-bank entry returned from a vector search.
type AnswerHit struct {
	QuestionID string
	SetID      string
	Question   string
	Answer     string
	Score      float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertAnswer implements QdrantService.
func (q *qdrantService) UpsertAnswer(ctx context.Context, questionID, setID, question, answer string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(questionID),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"question_id": questionID,
			"set_id":      setID,
			"question":    question,
			"answer":      answer,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilarAnswers implements QdrantService.
func (q *qdrantService) SearchSimilarAnswers(ctx context.Context, queryEmbedding []float32, limit int) ([]AnswerHit, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []AnswerHit
	for _, point := range searchResult {
		payload := point.Payload

		hit := AnswerHit{
			Score: point.Score,
		}

		if v, ok := payload["question_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.QuestionID = val.StringValue
			}
		}

		if v, ok := payload["set_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.SetID = val.StringValue
			}
		}

		if v, ok := payload["question"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Question = val.StringValue
			}
		}

		if v, ok := payload["answer"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Answer = val.StringValue
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// DeleteSet implements QdrantService.
func (q *qdrantService) DeleteSet(ctx context.Context, setID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("set_id", setID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete set points: %w", err)
	}

	return nil
}
