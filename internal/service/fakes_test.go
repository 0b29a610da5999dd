package service

import (
	"context"
	"sort"
	"sync"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory repository fakes. They interpret the same specifications the
// gorm implementations do, but against slices and maps.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *msg
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *fakeMessageRepo) DeleteBySessionId(_ context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.SessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*entity.ChatMessage, 0, len(r.messages))
	result = append(result, r.messages...)

	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySessionID:
			filtered := result[:0:0]
			for _, m := range result {
				if m.SessionId == s.SessionID {
					filtered = append(filtered, m)
				}
			}
			result = filtered
		case specification.ByRole:
			filtered := result[:0:0]
			for _, m := range result {
				if m.Role == s.Role {
					filtered = append(filtered, m)
				}
			}
			result = filtered
		case specification.OrderBy:
			desc := s.Desc
			sort.SliceStable(result, func(i, j int) bool {
				if desc {
					return result[i].CreatedAt.After(result[j].CreatedAt)
				}
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			})
		case specification.Pagination:
			if s.Offset < len(result) {
				result = result[s.Offset:]
			} else {
				result = nil
			}
			if s.Limit > 0 && s.Limit < len(result) {
				result = result[:s.Limit]
			}
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *fakeMessageRepo) ListSessionActivity(_ context.Context) ([]contract.SessionActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := map[uuid.UUID]contract.SessionActivity{}
	for _, m := range r.messages {
		if row, ok := latest[m.SessionId]; !ok || m.CreatedAt.After(row.LastActivity) {
			latest[m.SessionId] = contract.SessionActivity{SessionId: m.SessionId, LastActivity: m.CreatedAt}
		}
	}

	rows := make([]contract.SessionActivity, 0, len(latest))
	for _, row := range latest {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastActivity.Before(rows[j].LastActivity)
	})
	return rows, nil
}

type fakeTitleRepo struct {
	mu     sync.Mutex
	titles map[uuid.UUID]*entity.SessionTitle
}

func newFakeTitleRepo() *fakeTitleRepo {
	return &fakeTitleRepo{titles: map[uuid.UUID]*entity.SessionTitle{}}
}

func (r *fakeTitleRepo) Upsert(_ context.Context, title *entity.SessionTitle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *title
	r.titles[title.SessionId] = &clone
	return nil
}

func (r *fakeTitleRepo) FindBySessionId(_ context.Context, sessionId uuid.UUID) (*entity.SessionTitle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.titles[sessionId]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (r *fakeTitleRepo) Delete(_ context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.titles, sessionId)
	return nil
}

func (r *fakeTitleRepo) Count(_ context.Context, sessionId uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[sessionId]; ok {
		return 1, nil
	}
	return 0, nil
}

type fakeUnitOfWork struct {
	messageRepo *fakeMessageRepo
	titleRepo   *fakeTitleRepo
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messageRepo
}
func (u *fakeUnitOfWork) SessionTitleRepository() contract.SessionTitleRepository {
	return u.titleRepo
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUnitOfWork{
		messageRepo: &fakeMessageRepo{},
		titleRepo:   newFakeTitleRepo(),
	}}
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeLLM answers every call with a canned response and records the prompts
// it was given.

type fakeLLM struct {
	mu        sync.Mutex
	response  string
	deltas    []string
	err       error
	histories [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string) error, _ ...llm.Option) (*llm.StreamResult, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	deltas := f.deltas
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	var content string
	for _, d := range deltas {
		if err := onDelta(d); err != nil {
			return nil, err
		}
		content += d
	}
	return &llm.StreamResult{Content: content, Model: "test-model", EvalCount: len(deltas)}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (f *fakeLLM) lastHistory() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.histories) == 0 {
		return nil
	}
	return f.histories[len(f.histories)-1]
}

// fakePublisher records queued payloads instead of delivering them.

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}

// noopLogger keeps the services quiet under test.

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

// recordingSink captures everything a stream produces.

type recordingSink struct {
	sessionId uuid.UUID
	isNew     bool
	deltas    []string
	result    *dto.StreamChatResult
}

func (s *recordingSink) Session(sessionId uuid.UUID, isNew bool) error {
	s.sessionId = sessionId
	s.isNew = isNew
	return nil
}

func (s *recordingSink) Delta(content string) error {
	s.deltas = append(s.deltas, content)
	return nil
}

func (s *recordingSink) Done(result *dto.StreamChatResult) error {
	s.result = result
	return nil
}
