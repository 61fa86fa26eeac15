// Package session holds the state of one question-answering session:
// the current document, its index, and the conversation history.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docbuddy/docbuddy/internal/chat"
	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/config"
	"github.com/docbuddy/docbuddy/internal/document"
	"github.com/docbuddy/docbuddy/internal/embedding"
	"github.com/docbuddy/docbuddy/internal/index"
	"github.com/docbuddy/docbuddy/internal/retrieval"
)

// memoryExchanges is how many recent exchanges feed the prompt memory.
const memoryExchanges = 6

// memoryAnswerLen caps each remembered answer in the prompt memory.
const memoryAnswerLen = 250

// Exchange is one question/answer turn with its supporting citations.
type Exchange struct {
	ID        string               `json:"id"`
	Question  string               `json:"question"`
	Answer    string               `json:"answer"`
	Citations []retrieval.Citation `json:"citations,omitempty"`
	AskedAt   time.Time            `json:"asked_at"`
}

// Session owns all mutable state of a question-answering run. State
// lives here, not in package globals; Reset returns the session to its
// freshly constructed condition.
type Session struct {
	ID        string
	CreatedAt time.Time

	cfg       config.Retrieval
	provider  embedding.Provider
	generator chat.Generator

	doc       *document.Document
	idx       *index.Index
	retriever *retrieval.Retriever
	history   []Exchange
}

// New creates a session with no document loaded.
func New(cfg config.Retrieval, provider embedding.Provider, generator chat.Generator) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		cfg:       cfg,
		provider:  provider,
		generator: generator,
	}
	s.adoptIndex(index.New(cfg.CacheCapacity))
	return s
}

// adoptIndex swaps in an index and rebuilds the retriever around it.
// Callers must not search the old index concurrently with the swap.
func (s *Session) adoptIndex(idx *index.Index) {
	s.idx = idx
	s.retriever = retrieval.NewRetriever(s.provider, idx, s.cfg.TopK, s.cfg.MaxContextLength)
}

// LoadDocument flattens, chunks, and indexes a document, replacing any
// previously loaded one. The index is built fresh, so stale cached
// queries cannot survive. Returns the indexed chunks.
func (s *Session) LoadDocument(ctx context.Context, doc *document.Document) ([]chunker.Chunk, error) {
	text, pm, err := doc.Flatten()
	if err != nil {
		return nil, err
	}

	ch, err := chunker.New(s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	chunks := ch.Split(text, pm, doc.Name)

	idx := index.New(s.cfg.CacheCapacity)
	if err := idx.Build(ctx, chunks, s.provider); err != nil {
		return nil, err
	}

	s.doc = doc
	s.adoptIndex(idx)
	return chunks, nil
}

// UseIndex adopts an already built index (for example one loaded from
// disk) instead of building from a document.
func (s *Session) UseIndex(idx *index.Index) {
	s.adoptIndex(idx)
}

// Index returns the session's current index.
func (s *Session) Index() *index.Index {
	return s.idx
}

// Document returns the loaded document, or nil.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Search returns the ranked chunks for a query.
func (s *Session) Search(ctx context.Context, query string) ([]index.SearchResult, error) {
	return s.retriever.Search(ctx, query)
}

// Context retrieves and assembles the context for a query.
func (s *Session) Context(ctx context.Context, query string) (string, []retrieval.Citation, error) {
	return s.retriever.Context(ctx, query)
}

// Ask answers a question grounded in the loaded document. When
// retrieval finds nothing relevant the canned no-content answer is
// returned without invoking the generator.
func (s *Session) Ask(ctx context.Context, question string) (string, []retrieval.Citation, error) {
	contextStr, citations, err := s.retriever.Context(ctx, question)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(contextStr) == "" {
		return chat.NoContentAnswer, nil, nil
	}

	prompt := chat.BuildPrompt(question, contextStr, s.Memory())
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	s.remember(Exchange{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Citations: citations,
		AskedAt:   time.Now(),
	})
	return answer, citations, nil
}

// remember appends an exchange, dropping the oldest beyond the
// configured history size.
func (s *Session) remember(e Exchange) {
	s.history = append(s.history, e)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
}

// History returns the recorded exchanges, oldest first.
func (s *Session) History() []Exchange {
	return s.history
}

// Memory renders the recent conversation for prompt grounding.
// Returns "" when there is no history.
func (s *Session) Memory() string {
	if len(s.history) == 0 {
		return ""
	}

	recent := s.history
	if len(recent) > memoryExchanges {
		recent = recent[len(recent)-memoryExchanges:]
	}

	var parts []string
	for _, e := range recent {
		answer := e.Answer
		if len(answer) > memoryAnswerLen {
			answer = answer[:memoryAnswerLen] + "..."
		}
		parts = append(parts, "Q: "+e.Question+"\nA: "+answer)
	}
	return strings.Join(parts, "\n\n")
}

// Reset clears the loaded document, index, and history.
func (s *Session) Reset() {
	s.doc = nil
	s.history = nil
	s.adoptIndex(index.New(s.cfg.CacheCapacity))
}
