package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studymate-api/internal/models"
	"github.com/noah-isme/studymate-api/internal/service"
	appErrors "github.com/noah-isme/studymate-api/pkg/errors"
)

type documentServiceStub struct {
	uploaded   service.UploadInput
	uploadBody string
	testReq    service.GenerateTestRequest
	question   service.DocumentQuestionRequest
	documentID string
	err        error
}

func (s *documentServiceStub) Upload(ctx context.Context, userID string, in service.UploadInput) (*models.Document, error) {
	s.uploaded = in
	raw, _ := io.ReadAll(in.Body)
	s.uploadBody = string(raw)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Document{ID: "doc-1", Filename: in.Filename, WordCount: 10}, nil
}

func (s *documentServiceStub) List(ctx context.Context, userID string) []models.Document {
	return []models.Document{{ID: "doc-1", Filename: "notes.pdf"}}
}

func (s *documentServiceStub) Ask(ctx context.Context, userID, documentID string, req service.DocumentQuestionRequest) (*service.DocumentAnswer, error) {
	s.documentID = documentID
	s.question = req
	if s.err != nil {
		return nil, s.err
	}
	return &service.DocumentAnswer{Answer: "42", Source: "notes.pdf"}, nil
}

func (s *documentServiceStub) GenerateTest(ctx context.Context, userID, documentID string, req service.GenerateTestRequest) (*models.PracticeTest, error) {
	s.documentID = documentID
	s.testReq = req
	return &models.PracticeTest{ID: "test-1", DocumentID: documentID, Title: "Quiz"}, s.err
}

func (s *documentServiceStub) Test(ctx context.Context, userID, testID string) (*models.PracticeTest, error) {
	if testID != "test-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
	}
	return &models.PracticeTest{ID: testID, Title: "Quiz"}, nil
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestDocumentHandlerUpload(t *testing.T) {
	svc := &documentServiceStub{}
	h := NewDocumentHandler(svc)
	body, contentType := multipartUpload(t, "pdf", "notes.pdf", "%PDF-1.4")
	c, w := newTestContext(http.MethodPost, "/documents", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, "notes.pdf", svc.uploaded.Filename)
	assert.Equal(t, "%PDF-1.4", svc.uploadBody)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"id":"doc-1"`)
}

func TestDocumentHandlerUploadMissingFile(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{})
	body, contentType := multipartUpload(t, "file", "notes.pdf", "%PDF-1.4")
	c, w := newTestContext(http.MethodPost, "/documents", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "No PDF file uploaded", decodeEnvelope(t, w).Error.Message)
}

func TestDocumentHandlerUploadTooLarge(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{err: appErrors.ErrPayloadTooLarge})
	body, contentType := multipartUpload(t, "pdf", "notes.pdf", "%PDF-1.4")
	c, w := newTestContext(http.MethodPost, "/documents", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestDocumentHandlerAsk(t *testing.T) {
	svc := &documentServiceStub{}
	h := NewDocumentHandler(svc)
	c, w := newTestContext(http.MethodPost, "/documents/doc-1/questions", strings.NewReader(`{"question":"What?"}`))
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	h.Ask(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "doc-1", svc.documentID)
	assert.Equal(t, "What?", svc.question.Question)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"source":"notes.pdf"`)
}

func TestDocumentHandlerGenerateTestDefaults(t *testing.T) {
	svc := &documentServiceStub{}
	h := NewDocumentHandler(svc)
	c, w := newTestContext(http.MethodPost, "/documents/doc-1/tests", nil)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}

	h.GenerateTest(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusCreated)
	assert.Zero(t, svc.testReq.QuestionCount)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"test_id":"test-1"`)
}

func TestDocumentHandlerTestLookup(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{})

	c, w := newTestContext(http.MethodGet, "/documents/tests/test-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "test-1"}}
	h.Test(withUser(c, "user-1"))
	requireStatus(t, w, http.StatusOK)

	c, w = newTestContext(http.MethodGet, "/documents/tests/other", nil)
	c.Params = gin.Params{{Key: "id", Value: "other"}}
	h.Test(withUser(c, "user-1"))
	requireStatus(t, w, http.StatusNotFound)
}

func TestDocumentHandlerList(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{})
	c, w := newTestContext(http.MethodGet, "/documents", nil)

	h.List(withUser(c, "user-1"))

	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), "notes.pdf")
}
