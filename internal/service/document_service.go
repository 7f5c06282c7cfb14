package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/content"
	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/storage"
)

const (
	qaContentLimit   = 15000
	testContentLimit = 12000
	noDocumentAnswer = "No response generated."
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

type fileStager interface {
	SaveStream(filename string, r io.Reader, maxBytes int64) (int64, error)
	Path(filename string) (string, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type materialLibrary interface {
	MaterialFor(filename string) content.Material
	Style(style models.LearningStyle) (content.StyleGuide, bool)
}

// DocumentConfig bounds uploads and retention.
type DocumentConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	TTL          time.Duration
}

// UploadInput is one multipart file.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// DocumentQuestionRequest asks about one document.
type DocumentQuestionRequest struct {
	Question      string               `json:"question" validate:"required,max=4000"`
	LearningStyle models.LearningStyle `json:"learning_style" validate:"omitempty,max=32"`
}

// DocumentAnswer is the reply to a document question.
type DocumentAnswer struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// GenerateTestRequest configures a practice test.
type GenerateTestRequest struct {
	TestType      string               `json:"test_type" validate:"omitempty,max=50"`
	QuestionCount int                  `json:"question_count" validate:"omitempty,min=1,max=50"`
	Difficulty    string               `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	LearningStyle models.LearningStyle `json:"learning_style" validate:"omitempty,max=32"`
}

// DocumentService stages PDF uploads and runs document prompts.
type DocumentService struct {
	files     fileStager
	library   materialLibrary
	llm       TextGenerator
	recorder  *AIResultRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentConfig
	store     *documentStore
	now       func() time.Time
	pages     func(path string) (int, error)
}

// NewDocumentService constructs the service.
func NewDocumentService(files fileStager, library materialLibrary, llm TextGenerator, recorder *AIResultRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg DocumentConfig) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf"}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &DocumentService{
		files:     files,
		library:   library,
		llm:       llm,
		recorder:  recorder,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newDocumentStore(),
		now:       func() time.Time { return time.Now().UTC() },
		pages:     countPDFPages,
	}
}

// Upload stages the file, inspects it and stores the study text that
// stands in for its content.
func (s *DocumentService) Upload(ctx context.Context, userID string, in UploadInput) (*models.Document, error) {
	filename := filepath.Base(strings.TrimSpace(in.Filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "No PDF file uploaded")
	}
	if !s.acceptable(filename, in.ContentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Only PDF files are allowed")
	}

	id := uuid.NewString()
	staged := id + ".pdf"
	size, err := s.files.SaveStream(staged, in.Body, s.cfg.MaxFileSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSize))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage upload")
	}
	defer func() {
		if err := s.files.Delete(staged); err != nil {
			s.logger.Warn("failed to remove staged upload", zap.String("file", staged), zap.Error(err))
		}
	}()

	pageCount := 0
	if path, err := s.files.Path(staged); err == nil {
		if n, err := s.pages(path); err != nil {
			s.logger.Debug("pdf inspection failed", zap.String("file", filename), zap.Error(err))
		} else {
			pageCount = n
		}
	}

	now := s.now()
	text := s.library.MaterialFor(filename).Render(filename, size, now)
	doc := models.Document{
		ID:         id,
		UserID:     userID,
		Filename:   filename,
		Content:    text,
		WordCount:  len(strings.Fields(text)),
		PageCount:  pageCount,
		UploadedAt: now,
	}
	stored := s.store.PutDocument(doc)
	s.metrics.SetDocumentsStored(stored)
	s.logger.Info("document uploaded",
		zap.String("user_id", userID),
		zap.String("document_id", id),
		zap.Int64("size", size),
		zap.Int("pages", pageCount),
		zap.Int("words", doc.WordCount),
	)
	return &doc, nil
}

// List returns the user's documents.
func (s *DocumentService) List(ctx context.Context, userID string) []models.Document {
	docs := s.store.DocumentsFor(userID)
	live := docs[:0]
	for _, doc := range docs {
		if !s.expired(doc) {
			live = append(live, doc)
		}
	}
	return live
}

// Ask answers a question grounded on one document.
func (s *DocumentService) Ask(ctx context.Context, userID, documentID string, req DocumentQuestionRequest) (*DocumentAnswer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "question is required")
	}
	doc, err := s.document(userID, documentID)
	if err != nil {
		return nil, err
	}

	prompt := buildDocumentQuestionPrompt(doc, req)
	text, err := callModel(ctx, s.llm, s.metrics, models.AIResultDocumentQA, prompt)
	if err != nil {
		s.logger.Error("document question failed", zap.String("document_id", doc.ID), zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = noDocumentAnswer
	}
	s.recorder.Record(models.AIResult{UserID: userID, Kind: models.AIResultDocumentQA, Prompt: req.Question, Response: text, Model: s.llm.Model()})
	return &DocumentAnswer{Answer: text, Source: doc.Filename}, nil
}

// GenerateTest builds a practice test from one document.
func (s *DocumentService) GenerateTest(ctx context.Context, userID, documentID string, req GenerateTestRequest) (*models.PracticeTest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test request")
	}
	if req.TestType == "" {
		req.TestType = "multiple-choice"
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = 5
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	doc, err := s.document(userID, documentID)
	if err != nil {
		return nil, err
	}

	instructions := ""
	if req.LearningStyle != "" {
		if guide, ok := s.library.Style(req.LearningStyle); ok {
			instructions = guide.TestInstructions
		}
	}
	prompt := buildTestPrompt(doc, req, instructions)
	reply, err := callModel(ctx, s.llm, s.metrics, models.AIResultPracticeTest, prompt)
	if err != nil {
		s.logger.Error("test generation failed", zap.String("document_id", doc.ID), zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(reply) == "" {
		reply = "{}"
	}

	test := ParsePracticeTest(reply, doc.Filename)
	test.ID = uuid.NewString()
	test.UserID = userID
	test.DocumentID = doc.ID
	test.TestType = req.TestType
	test.Difficulty = req.Difficulty
	test.CreatedAt = s.now()
	s.store.PutTest(test)
	s.recorder.Record(models.AIResult{UserID: userID, Kind: models.AIResultPracticeTest, Prompt: doc.Filename, Response: reply, Model: s.llm.Model()})
	return &test, nil
}

// Test returns a stored practice test.
func (s *DocumentService) Test(ctx context.Context, userID, testID string) (*models.PracticeTest, error) {
	test, ok := s.store.Test(testID)
	if !ok || test.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
	}
	if _, err := s.document(userID, test.DocumentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
	}
	return &test, nil
}

// Sweep removes expired documents and stale staged files.
func (s *DocumentService) Sweep(ctx context.Context) {
	removed, remaining := s.store.Expire(s.now().Add(-s.cfg.TTL))
	s.metrics.SetDocumentsStored(remaining)

	files, err := s.files.CleanupOlderThan(s.cfg.TTL)
	if err != nil {
		s.logger.Warn("staged upload cleanup failed", zap.Error(err))
	}
	if removed > 0 || len(files) > 0 {
		s.logger.Info("document sweep", zap.Int("documents_removed", removed), zap.Int("files_removed", len(files)))
	}
}

func (s *DocumentService) document(userID, id string) (models.Document, error) {
	doc, ok := s.store.Document(id)
	if !ok || doc.UserID != userID || s.expired(doc) {
		return models.Document{}, appErrors.Clone(appErrors.ErrNotFound, "PDF not found or access denied")
	}
	return doc, nil
}

// expired matches the cutoff Sweep uses, so lookups do not wait for the cron run.
func (s *DocumentService) expired(doc models.Document) bool {
	return doc.UploadedAt.Before(s.now().Add(-s.cfg.TTL))
}

func (s *DocumentService) acceptable(filename, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if mime == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// ParsePracticeTest extracts the JSON object from a model reply. Replies
// without one become a test carrying the raw text and an error.
func ParsePracticeTest(reply, filename string) models.PracticeTest {
	fallback := models.PracticeTest{
		Title:       "Test on " + filename,
		Error:       "Failed to generate structured test",
		RawResponse: reply,
	}
	match := jsonObjectPattern.FindString(reply)
	if match == "" {
		return fallback
	}
	var parsed struct {
		Title     string                `json:"title"`
		Questions []models.TestQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return fallback
	}
	return models.PracticeTest{Title: parsed.Title, Questions: parsed.Questions}
}

func truncateContent(text string, limit int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}

func buildDocumentQuestionPrompt(doc models.Document, req DocumentQuestionRequest) string {
	body, truncated := truncateContent(doc.Content, qaContentLimit)
	if truncated {
		body += "..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a study assistant helping with a PDF document titled %q.\n", doc.Filename)
	sb.WriteString("Answer the student's question based ONLY on the content from this PDF. If the answer is not in the PDF, say so clearly.\n\n")
	if req.LearningStyle != "" {
		fmt.Fprintf(&sb, "The student is a %s learner, so tailor your explanation accordingly:\n", req.LearningStyle)
		sb.WriteString("- Visual learners: suggest diagrams, charts, visual organization\n")
		sb.WriteString("- Auditory learners: suggest reading aloud, discussion, verbal repetition\n")
		sb.WriteString("- Kinesthetic learners: suggest hands-on activities, movement, practice\n")
		sb.WriteString("- Reading/writing learners: suggest notes, lists, written summaries\n\n")
	}
	fmt.Fprintf(&sb, "PDF Content (%d words):\n%s\n\n", doc.WordCount, body)
	fmt.Fprintf(&sb, "Student Question: %s\n\n", req.Question)
	sb.WriteString("Please provide a comprehensive, accurate answer based on the PDF content:")
	return sb.String()
}

func buildTestPrompt(doc models.Document, req GenerateTestRequest, instructions string) string {
	body, _ := truncateContent(doc.Content, testContentLimit)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following PDF content, create a %s test with %d questions at %s difficulty level.\n\n", req.TestType, req.QuestionCount, req.Difficulty)
	if instructions != "" {
		sb.WriteString(instructions)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "PDF Content: \"%s...\"\n\n", body)
	sb.WriteString("Please generate a comprehensive test in the following JSON format:\n")
	sb.WriteString("{\n  \"title\": \"Test on [PDF Topic/Subject]\",\n  \"questions\": [\n    {\n")
	sb.WriteString("      \"id\": 1,\n      \"question\": \"Question text here\",\n")
	fmt.Fprintf(&sb, "      \"type\": %q,\n", req.TestType)
	sb.WriteString("      \"options\": [\"Option A\", \"Option B\", \"Option C\", \"Option D\"],\n")
	sb.WriteString("      \"correctAnswer\": \"Option A\",\n")
	sb.WriteString("      \"explanation\": \"Detailed explanation of why this is correct and why other options are wrong\",\n")
	fmt.Fprintf(&sb, "      \"difficulty\": %q,\n", req.Difficulty)
	sb.WriteString("      \"topic\": \"Main topic this question covers\"\n    }\n  ]\n}\n\n")
	sb.WriteString("Instructions:\n")
	sb.WriteString("- Create questions that test comprehension, analysis, and application of the material\n")
	sb.WriteString("- Make sure questions cover different sections/topics from the PDF\n")
	sb.WriteString("- Provide clear, educational explanations for each answer\n")
	sb.WriteString("- Ensure incorrect options are plausible but clearly wrong\n")
	sb.WriteString("- Base ALL content strictly on the provided PDF text\n")
	sb.WriteString("- If the PDF covers multiple topics, distribute questions across them\n")
	fmt.Fprintf(&sb, "- Make sure the difficulty level (%s) is appropriate for the target audience", req.Difficulty)
	if instructions != "" {
		sb.WriteString("\n- ")
		sb.WriteString(instructions)
	}
	return sb.String()
}

// countPDFPages opens a staged PDF and reports its page count. The parser
// panics on some malformed files, so those are turned into errors.
func countPDFPages(path string) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("inspect pdf: %v", rec)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return r.NumPage(), nil
}
