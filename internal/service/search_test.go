package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"journal-rag/internal/apperr"
	"journal-rag/internal/dates"
	"journal-rag/internal/rag"
	"journal-rag/internal/service"
	"journal-rag/internal/service/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

func TestSearchService_Search(t *testing.T) {
	tests := []struct {
		name      string
		req       service.SearchRequest
		mockSetup func(m *mocks.MockSearcher)
		wantErr   error
		wantField string
		wantMode  rag.Mode
	}{
		{
			name: "passes parsed query through",
			req:  service.SearchRequest{Query: "rust", After: "2025-07-20", Before: "2025-07-21", Limit: 5, Debug: true},
			mockSetup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, q rag.Query) (rag.Outcome, error) {
						if q.Text != "rust" || q.Limit != 5 || !q.Debug {
							t.Errorf("Search() query = %+v", q)
						}
						if q.After == nil || dates.Format(*q.After) != "2025-07-20" {
							t.Errorf("Search() after = %v, want 2025-07-20", q.After)
						}
						if q.Before == nil || dates.Format(*q.Before) != "2025-07-21" {
							t.Errorf("Search() before = %v, want 2025-07-21", q.Before)
						}
						return rag.Outcome{Mode: rag.ModeLive}, nil
					})
			},
			wantMode: rag.ModeLive,
		},
		{
			name: "open date bounds are nil",
			req:  service.SearchRequest{Query: "rust"},
			mockSetup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, q rag.Query) (rag.Outcome, error) {
						if q.After != nil || q.Before != nil {
							t.Errorf("Search() bounds = %v, %v, want nil", q.After, q.Before)
						}
						return rag.Outcome{Mode: rag.ModeDegraded, Reason: apperr.ErrNotFound}, nil
					})
			},
			wantMode: rag.ModeDegraded,
		},
		{
			name:      "empty query",
			req:       service.SearchRequest{},
			wantErr:   apperr.ErrInvalidInput,
			wantField: "query",
		},
		{
			name:      "bad after date",
			req:       service.SearchRequest{Query: "rust", After: "21/07/2025"},
			wantErr:   apperr.ErrInvalidInput,
			wantField: "after",
		},
		{
			name:      "bad before date",
			req:       service.SearchRequest{Query: "rust", Before: "2025-13-01"},
			wantErr:   apperr.ErrInvalidInput,
			wantField: "before",
		},
		{
			name:      "negative limit",
			req:       service.SearchRequest{Query: "rust", Limit: -1},
			wantErr:   apperr.ErrInvalidInput,
			wantField: "limit",
		},
		{
			name: "large limit is passed through",
			req:  service.SearchRequest{Query: "rust", Limit: 200},
			mockSetup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, q rag.Query) (rag.Outcome, error) {
						if q.Limit != 200 {
							t.Errorf("Search() limit = %d, want 200", q.Limit)
						}
						return rag.Outcome{Mode: rag.ModeLive}, nil
					})
			},
			wantMode: rag.ModeLive,
		},
		{
			name: "engine error is returned",
			req:  service.SearchRequest{Query: "rust"},
			mockSetup: func(m *mocks.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).
					Return(rag.Outcome{}, apperr.Inconsistent("table built with another model"))
			},
			wantErr: apperr.ErrDataConsistency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockSearcher := mocks.NewMockSearcher(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSearcher)
			}
			svc := service.NewSearchService(mockSearcher)

			outcome, err := svc.Search(testContext(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Search() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantField != "" {
					var validationErr *apperr.ValidationError
					if !errors.As(err, &validationErr) {
						t.Fatalf("Search() error = %T, want *apperr.ValidationError", err)
					}
					if validationErr.Field != tt.wantField {
						t.Errorf("ValidationError.Field = %q, want %q", validationErr.Field, tt.wantField)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Search() unexpected error = %v", err)
			}
			if outcome.Mode != tt.wantMode {
				t.Errorf("Search() mode = %s, want %s", outcome.Mode, tt.wantMode)
			}
		})
	}
}
