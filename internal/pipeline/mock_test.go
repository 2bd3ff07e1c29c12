package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/breachcase/breachwatch/internal/model"
)

// --- Processor Mock ---

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Classify(ctx context.Context, article model.RawArticle) (*model.Classification, error) {
	args := m.Called(ctx, article)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Classification), args.Error(1)
}

func (m *mockProcessor) Extract(ctx context.Context, article model.RawArticle) (*model.Extraction, error) {
	args := m.Called(ctx, article)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Extraction), args.Error(1)
}

func (m *mockProcessor) DetectUpdate(ctx context.Context, article model.RawArticle, candidates []model.Breach, signals map[string]model.MatchSignal) (*model.UpdateCheck, error) {
	args := m.Called(ctx, article, candidates, signals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UpdateCheck), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListBreachStubs(ctx context.Context) ([]model.BreachStub, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BreachStub), args.Error(1)
}

func (m *mockStore) GetBreachesByIDs(ctx context.Context, ids []string) ([]model.Breach, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Breach), args.Error(1)
}

func (m *mockStore) CreateBreach(ctx context.Context, extraction model.Extraction, article model.RawArticle) (string, error) {
	args := m.Called(ctx, extraction, article)
	return args.String(0), args.Error(1)
}

func (m *mockStore) AppendBreachUpdate(ctx context.Context, entry model.UpdateEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *mockStore) FindBreachIDByURL(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockStore) IsProcessed(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MarkProcessed(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
