package service

import (
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/studymate-api/internal/models"
)

// documentStore keeps uploaded documents and generated tests in memory.
type documentStore struct {
	mu        sync.RWMutex
	documents map[string]models.Document
	tests     map[string]models.PracticeTest
}

func newDocumentStore() *documentStore {
	return &documentStore{
		documents: make(map[string]models.Document),
		tests:     make(map[string]models.PracticeTest),
	}
}

func (s *documentStore) PutDocument(doc models.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return len(s.documents)
}

func (s *documentStore) Document(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// DocumentsFor returns the user's documents, newest first.
func (s *documentStore) DocumentsFor(userID string) []models.Document {
	s.mu.RLock()
	out := make([]models.Document, 0)
	for _, doc := range s.documents {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

func (s *documentStore) PutTest(test models.PracticeTest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[test.ID] = test
}

func (s *documentStore) Test(id string) (models.PracticeTest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	test, ok := s.tests[id]
	return test, ok
}

// Expire drops documents uploaded before cutoff together with their tests
// and returns how many documents remain.
func (s *documentStore) Expire(cutoff time.Time) (removed, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.documents {
		if doc.UploadedAt.Before(cutoff) {
			delete(s.documents, id)
			removed++
		}
	}
	for id, test := range s.tests {
		if _, ok := s.documents[test.DocumentID]; !ok {
			delete(s.tests, id)
		}
	}
	return removed, len(s.documents)
}
