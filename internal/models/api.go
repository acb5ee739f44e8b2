package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
}

type GenerateQuestionsRequest struct {
	DocumentID   string `json:"document_id"`
	NumQuestions int    `json:"num_questions"`
}

type GenerateQuestionsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type QuestionAnswerData struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuestionSetResponse struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	QAPairs      []QuestionAnswerData `json:"qa_pairs,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

// ResponseEvalResponse mirrors the field names the interview client
// consumes: text, emotion and similarity.
type ResponseEvalResponse struct {
	Text       string  `json:"text"`
	Emotion    string  `json:"emotion"`
	Similarity float64 `json:"similarity"`
}

type ProctorRequest struct {
	Image string `json:"image"`
}

type ProctorResponse struct {
	Anomaly string `json:"anomaly"`
}
