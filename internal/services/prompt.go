package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionGenerationPrompt creates the prompt for generating interview
// question/answer pairs from source document text.
func (pb *PromptBuilder) BuildQuestionGenerationPrompt(documentText string, numQuestions int) string {
	return fmt.Sprintf(`You are an expert interviewer preparing an automated assessment from study material.

SOURCE MATERIAL:
%s

Your task is to generate exactly %d question/answer pairs from the source material above.

Rules:
1. Every question must be answerable from the source material alone.
2. Answers must be complete sentences (1-3 sentences), not single words, so they can serve as reference answers for grading spoken responses.
3. Cover different parts of the material; do not ask two questions about the same fact.
4. Do not reference "the text", "the document" or "the passage" in questions.

Return your response in the following JSON format:
[
  {
    "question": "<the question>",
    "answer": "<the reference answer in full sentences>"
  }
]

Return only the JSON array, nothing else.`,
		documentText, numQuestions)
}
