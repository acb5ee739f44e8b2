package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"prepview/interview-evaluator/internal/models"
	"prepview/interview-evaluator/internal/repositories"
)

// QuestionGeneratorService runs one question-generation job: extract the
// document text, prompt the LLM for QA pairs, persist them and index the
// reference answers in the vector store.
type QuestionGeneratorService interface {
	GenerateFromDocument(ctx context.Context, setID uuid.UUID) error
}

type questionGeneratorService struct {
	setRepo       repositories.QuestionSetRepository
	docRepo       repositories.DocumentRepository
	geminiService GeminiService
	qdrantService QdrantService
	pdfParser     PDFParserService
	chunker       TextChunker
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewQuestionGeneratorService(
	setRepo repositories.QuestionSetRepository,
	docRepo repositories.DocumentRepository,
	geminiService GeminiService,
	qdrantService QdrantService,
	pdfParser PDFParserService,
	maxRetries int,
) QuestionGeneratorService {
	return &questionGeneratorService{
		setRepo:       setRepo,
		docRepo:       docRepo,
		geminiService: geminiService,
		qdrantService: qdrantService,
		pdfParser:     pdfParser,
		chunker:       NewTextChunker(),
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

type generatedQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// maxPromptChars caps how much document text goes into one generation
// prompt; longer documents are chunked and truncated to this budget.
const maxPromptChars = 24000

func (g *questionGeneratorService) GenerateFromDocument(ctx context.Context, setID uuid.UUID) error {
	if err := g.setRepo.UpdateStatus(setID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting question generation for set ID: %s\n", setID)

	set, err := g.setRepo.FindByID(setID)
	if err != nil {
		g.setRepo.UpdateError(setID, err.Error())
		return fmt.Errorf("failed to get question set: %w", err)
	}

	doc, err := g.docRepo.FindByID(set.DocumentID)
	if err != nil {
		g.setRepo.UpdateError(setID, fmt.Sprintf("source document not found: %v", err))
		return fmt.Errorf("failed to get source document: %w", err)
	}

	// Step 1: Extract document text
	log.Println("📄 Parsing source document...")
	content, err := g.pdfParser.ExtractText(doc.FilePath)
	if err != nil {
		g.setRepo.UpdateError(setID, fmt.Sprintf("failed to parse document: %v", err))
		return fmt.Errorf("failed to parse document: %w", err)
	}

	docText := g.prepareText(content.Text)

	// Step 2: Generate QA pairs with the LLM
	log.Println("🤖 Generating question/answer pairs with LLM...")
	prompt := g.promptBuilder.BuildQuestionGenerationPrompt(docText, set.NumQuestions)

	response, err := g.geminiService.GenerateTextWithRetry(ctx, prompt, 0.7, g.maxRetries)
	if err != nil {
		g.setRepo.UpdateError(setID, fmt.Sprintf("failed to generate questions: %v", err))
		return fmt.Errorf("failed to generate questions: %w", err)
	}

	pairs, err := parseGeneratedQuestions(response)
	if err != nil {
		g.setRepo.UpdateError(setID, fmt.Sprintf("failed to parse generated questions: %v", err))
		return fmt.Errorf("failed to parse generated questions: %w", err)
	}

	// Step 3: Persist the QA pairs
	log.Printf("💾 Saving %d question/answer pairs...\n", len(pairs))
	questions := make([]models.QuestionAnswer, 0, len(pairs))
	for i, qa := range pairs {
		questions = append(questions, models.QuestionAnswer{
			ID:       uuid.New(),
			Position: i + 1,
			Question: qa.Question,
			Answer:   qa.Answer,
		})
	}

	if err := g.setRepo.SaveQuestions(setID, questions); err != nil {
		g.setRepo.UpdateError(setID, fmt.Sprintf("failed to save questions: %v", err))
		return fmt.Errorf("failed to save questions: %w", err)
	}

	// Step 4: Index reference answers for bank lookups. Indexing failures
	// don't fail the job; the bank still works from the database.
	log.Println("🔍 Indexing reference answers...")
	for _, q := range questions {
		embedding, err := g.geminiService.GenerateEmbedding(ctx, q.Answer)
		if err != nil {
			log.Printf("⚠️  Failed to embed answer %s: %v\n", q.ID, err)
			continue
		}

		if err := g.qdrantService.UpsertAnswer(ctx, q.ID.String(), setID.String(), q.Question, q.Answer, embedding); err != nil {
			log.Printf("⚠️  Failed to index answer %s: %v\n", q.ID, err)
		}
	}

	log.Printf("✅ Question generation completed for set ID: %s\n", setID)
	return nil
}

// prepareText cleans the extracted text and trims it to the prompt budget
// on chunk boundaries.
func (g *questionGeneratorService) prepareText(text string) string {
	text = CleanText(text)
	if len(text) <= maxPromptChars {
		return text
	}

	var sb strings.Builder
	for _, chunk := range g.chunker.ChunkText(text, 2000, 100) {
		if sb.Len()+len(chunk) > maxPromptChars {
			break
		}
		sb.WriteString(chunk)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func parseGeneratedQuestions(response string) ([]generatedQA, error) {
	jsonStr := extractJSON(response)

	var pairs []generatedQA
	if err := json.Unmarshal([]byte(jsonStr), &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	valid := make([]generatedQA, 0, len(pairs))
	for _, qa := range pairs {
		qa.Question = strings.TrimSpace(qa.Question)
		qa.Answer = strings.TrimSpace(qa.Answer)
		if qa.Question == "" || qa.Answer == "" {
			continue
		}
		valid = append(valid, qa)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("no usable question/answer pairs in response")
	}

	return valid, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Prefer the array form; generation responses are JSON arrays
	if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	} else if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
