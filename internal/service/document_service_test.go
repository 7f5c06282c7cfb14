package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/models"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
	"github.com/noah-isme/studymate-api/pkg/storage"
)

func newDocumentServiceForTest(t *testing.T, llm TextGenerator) (*DocumentService, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewDocumentService(files, loadLibrary(t), llm, nil, NewMetricsService(), nil, zap.NewNop(), DocumentConfig{MaxFileSize: 64, TTL: time.Hour})
	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC) }
	svc.pages = func(path string) (int, error) { return 3, nil }
	return svc, dir
}

func uploadPDF(t *testing.T, svc *DocumentService, userID, name string) *models.Document {
	t.Helper()
	doc, err := svc.Upload(context.Background(), userID, UploadInput{Filename: name, ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4 fake")})
	require.NoError(t, err)
	return doc
}

func TestDocumentServiceUploadUsesMaterialByFilename(t *testing.T) {
	svc, dir := newDocumentServiceForTest(t, &llmStub{})

	doc := uploadPDF(t, svc, "user-1", "Algebra Notes.pdf")
	assert.Equal(t, "Algebra Notes.pdf", doc.Filename)
	assert.Equal(t, 3, doc.PageCount)
	assert.True(t, strings.HasPrefix(doc.Content, "Algebra Notes.pdf - Mathematics Study Guide\nProcessed: "))
	assert.Contains(t, doc.Content, "File Size: 13 bytes")
	assert.Equal(t, len(strings.Fields(doc.Content)), doc.WordCount)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	other := uploadPDF(t, svc, "user-1", "misc.pdf")
	assert.Contains(t, other.Content, "misc.pdf - Study Material")
}

func TestDocumentServiceUploadAcceptsPDFByNameOrMIME(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "user-1", UploadInput{Filename: "history.PDF", ContentType: "application/octet-stream", Body: strings.NewReader("x")})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "user-1", UploadInput{Filename: "scan", ContentType: "application/pdf; charset=binary", Body: strings.NewReader("x")})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "user-1", UploadInput{Filename: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDocumentServiceUploadTooLarge(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{})

	_, err := svc.Upload(context.Background(), "user-1", UploadInput{Filename: "big.pdf", Body: strings.NewReader(strings.Repeat("a", 65))})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPayloadTooLarge))
}

func TestDocumentServiceUploadIgnoresInspectionFailure(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{})
	svc.pages = func(path string) (int, error) { return 0, errors.New("not a pdf") }

	doc := uploadPDF(t, svc, "user-1", "science.pdf")
	assert.Zero(t, doc.PageCount)
	assert.Contains(t, doc.Content, "Science Study Guide")
}

func TestDocumentServiceListIsPerUser(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{})
	uploadPDF(t, svc, "user-1", "a.pdf")
	uploadPDF(t, svc, "user-2", "b.pdf")

	docs := svc.List(context.Background(), "user-1")
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Filename)
	assert.Empty(t, svc.List(context.Background(), "user-3"))
}

func TestDocumentServiceAsk(t *testing.T) {
	llm := &llmStub{reply: "Photosynthesis makes glucose."}
	svc, _ := newDocumentServiceForTest(t, llm)
	doc := uploadPDF(t, svc, "user-1", "biology.pdf")

	answer, err := svc.Ask(context.Background(), "user-1", doc.ID, DocumentQuestionRequest{Question: "What is photosynthesis?", LearningStyle: models.StyleVisual})
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis makes glucose.", answer.Answer)
	assert.Equal(t, "biology.pdf", answer.Source)

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, `helping with a PDF document titled "biology.pdf"`)
	assert.Contains(t, prompt, "The student is a visual learner")
	assert.Contains(t, prompt, "Student Question: What is photosynthesis?")
}

func TestDocumentServiceAskFallbackAndOwnership(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{})
	doc := uploadPDF(t, svc, "user-1", "history.pdf")

	answer, err := svc.Ask(context.Background(), "user-1", doc.ID, DocumentQuestionRequest{Question: "When?"})
	require.NoError(t, err)
	assert.Equal(t, "No response generated.", answer.Answer)

	_, err = svc.Ask(context.Background(), "user-2", doc.ID, DocumentQuestionRequest{Question: "When?"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Ask(context.Background(), "user-1", doc.ID, DocumentQuestionRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDocumentServiceGenerateTest(t *testing.T) {
	reply := "Here you go:\n```json\n{\"title\": \"Algebra Quiz\", \"questions\": [{\"id\": 1, \"question\": \"2+2?\", \"type\": \"multiple-choice\", \"options\": [\"3\", \"4\"], \"correctAnswer\": \"4\"}]}\n```"
	llm := &llmStub{reply: reply}
	svc, _ := newDocumentServiceForTest(t, llm)
	doc := uploadPDF(t, svc, "user-1", "algebra.pdf")

	test, err := svc.GenerateTest(context.Background(), "user-1", doc.ID, GenerateTestRequest{LearningStyle: models.StyleKinesthetic})
	require.NoError(t, err)
	assert.Equal(t, "Algebra Quiz", test.Title)
	require.Len(t, test.Questions, 1)
	assert.Equal(t, "4", test.Questions[0].CorrectAnswer)
	assert.Equal(t, "multiple-choice", test.TestType)
	assert.Equal(t, "medium", test.Difficulty)
	assert.Empty(t, test.Error)

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "create a multiple-choice test with 5 questions at medium difficulty level")
	assert.Contains(t, prompt, "For kinesthetic learners:")

	stored, err := svc.Test(context.Background(), "user-1", test.ID)
	require.NoError(t, err)
	assert.Equal(t, test.Title, stored.Title)

	_, err = svc.Test(context.Background(), "user-2", test.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestParsePracticeTestFallback(t *testing.T) {
	test := ParsePracticeTest("I cannot do that.", "notes.pdf")
	assert.Equal(t, "Test on notes.pdf", test.Title)
	assert.Equal(t, "Failed to generate structured test", test.Error)
	assert.Equal(t, "I cannot do that.", test.RawResponse)

	test = ParsePracticeTest("{not json}", "notes.pdf")
	assert.Equal(t, "Failed to generate structured test", test.Error)
}

func TestDocumentServiceSweepExpiresDocuments(t *testing.T) {
	svc, dir := newDocumentServiceForTest(t, &llmStub{reply: "{}"})
	doc := uploadPDF(t, svc, "user-1", "a.pdf")
	test, err := svc.GenerateTest(context.Background(), "user-1", doc.ID, GenerateTestRequest{})
	require.NoError(t, err)

	stale := filepath.Join(dir, "orphan.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }
	svc.Sweep(context.Background())

	assert.Empty(t, svc.List(context.Background(), "user-1"))
	_, err = svc.Test(context.Background(), "user-1", test.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocumentServiceExpiresBeforeSweep(t *testing.T) {
	svc, _ := newDocumentServiceForTest(t, &llmStub{reply: "{}"})
	doc := uploadPDF(t, svc, "user-1", "a.pdf")
	test, err := svc.GenerateTest(context.Background(), "user-1", doc.ID, GenerateTestRequest{})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 11, 0, 0, 0, time.UTC) }
	assert.Len(t, svc.List(context.Background(), "user-1"), 1)

	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 11, 0, 1, 0, time.UTC) }
	assert.Empty(t, svc.List(context.Background(), "user-1"))
	_, err = svc.Ask(context.Background(), "user-1", doc.ID, DocumentQuestionRequest{Question: "What is this?"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Test(context.Background(), "user-1", test.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

type sweepCounter struct {
	calls chan struct{}
}

func (s *sweepCounter) Sweep(ctx context.Context) {
	s.calls <- struct{}{}
}

func TestDocumentSweeperRunsOnSchedule(t *testing.T) {
	target := &sweepCounter{calls: make(chan struct{}, 4)}
	sweeper, err := NewDocumentSweeper(target, "@every 1s", zap.NewNop())
	require.NoError(t, err)
	sweeper.Start()
	defer sweeper.Stop()

	select {
	case <-target.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not run")
	}
}

func TestDocumentSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewDocumentSweeper(&sweepCounter{}, "not a schedule", zap.NewNop())
	assert.Error(t, err)
}
