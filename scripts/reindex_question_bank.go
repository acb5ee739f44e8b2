package main

import (
	"context"
	"log"

	"prepview/interview-evaluator/internal/config"
	"prepview/interview-evaluator/internal/repositories"
	"prepview/interview-evaluator/internal/services"
)

// Rebuilds the qdrant question-bank index from completed question sets in
// the database. Useful after wiping the vector store or changing the
// embedding model.
func main() {
	log.Println("🚀 Starting question bank reindex...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	setRepo := repositories.NewQuestionSetRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	sets, err := setRepo.FindCompleted()
	if err != nil {
		log.Fatalf("❌ Failed to load completed question sets: %v", err)
	}

	ctx := context.Background()
	indexed := 0

	for _, set := range sets {
		log.Printf("📦 Reindexing set %s (%d questions)\n", set.ID, len(set.Questions))

		for _, qa := range set.Questions {
			embedding, err := geminiService.GenerateEmbedding(ctx, qa.Answer)
			if err != nil {
				log.Printf("⚠️  Failed to embed answer %s: %v\n", qa.ID, err)
				continue
			}

			if err := qdrantService.UpsertAnswer(ctx, qa.ID.String(), set.ID.String(), qa.Question, qa.Answer, embedding); err != nil {
				log.Printf("⚠️  Failed to upsert answer %s: %v\n", qa.ID, err)
				continue
			}

			indexed++
		}
	}

	log.Printf("✅ Reindex complete: %d answers indexed from %d sets\n", indexed, len(sets))
}
