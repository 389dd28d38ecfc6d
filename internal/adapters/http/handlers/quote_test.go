package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-service/internal/app"
	"github.com/jsamuelsen/quote-service/internal/domain"
	"github.com/jsamuelsen/quote-service/internal/mocks"
)

var testNow = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

// setupQuoteRouter wires a QuoteHandler backed by a mock repository onto a bare engine.
func setupQuoteRouter(t *testing.T, setupMock func(*mocks.MockQuoteRepository)) *gin.Engine {
	t.Helper()
	repo := mocks.NewMockQuoteRepository(t)
	if setupMock != nil {
		setupMock(repo)
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Repository: repo,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:      func() time.Time { return testNow },
	})

	router := gin.New()
	NewQuoteHandler(service).RegisterQuoteRoutes(&router.RouterGroup)

	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestNewQuoteHandler(t *testing.T) {
	service := app.NewQuoteService(app.QuoteServiceConfig{
		Repository: mocks.NewMockQuoteRepository(t),
	})

	handler := NewQuoteHandler(service)

	require.NotNil(t, handler)
}

func TestToQuoteResponse(t *testing.T) {
	id := uuid.New()
	q := &domain.Quote{
		ID:         id,
		Book:       "Dune",
		Quote:      "Fear is the mind-killer.",
		InsertedAt: testNow,
		UpdatedAt:  testNow.Add(time.Minute),
	}

	got := toQuoteResponse(q)

	assert.Equal(t, &QuoteResponse{
		ID:         id.String(),
		Book:       "Dune",
		Quote:      "Fear is the mind-killer.",
		InsertedAt: testNow,
		UpdatedAt:  testNow.Add(time.Minute),
	}, got)
}

func TestQuoteHandler_CreateQuote(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().Insert(mock.Anything, mock.AnythingOfType("*domain.Quote")).Return(nil)
		})

		w := serve(router, http.MethodPost, "/quotes", `{"book":"Dune","quote":"Fear is the mind-killer."}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Dune", resp["book"])
		assert.Equal(t, "Fear is the mind-killer.", resp["quote"])
		assert.Equal(t, resp["inserted_at"], resp["updated_at"])
		assert.Equal(t, "2024-03-14T15:09:26Z", resp["inserted_at"])

		_, err := uuid.Parse(resp["id"].(string))
		assert.NoError(t, err)
	})

	t.Run("empty strings accepted", func(t *testing.T) {
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().Insert(mock.Anything, mock.MatchedBy(func(q *domain.Quote) bool {
				return q.Book == "" && q.Quote == ""
			})).Return(nil)
		})

		w := serve(router, http.MethodPost, "/quotes", `{"book":"","quote":""}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("storage failure is opaque", func(t *testing.T) {
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().Insert(mock.Anything, mock.Anything).
				Return(errors.New(`duplicate key value violates unique constraint "quotes_pkey"`))
		})

		w := serve(router, http.MethodPost, "/quotes", `{"book":"b","quote":"q"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "quotes_pkey")
		assert.Equal(t, dto.ErrorCodeInternal, decodeError(t, w).Error.Code)
	})
}

func TestQuoteHandler_CreateQuote_RejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantCode    string
		wantDetails string
	}{
		{"missing book", `{"quote":"q"}`, dto.ErrorCodeValidation, "book"},
		{"missing quote", `{"book":"b"}`, dto.ErrorCodeValidation, "quote"},
		{"null book", `{"book":null,"quote":"q"}`, dto.ErrorCodeValidation, "book"},
		{"malformed json", `{"book":`, dto.ErrorCodeBadRequest, ""},
		{"wrong type", `{"book":42,"quote":"q"}`, dto.ErrorCodeBadRequest, ""},
		{"not an object", `["b","q"]`, dto.ErrorCodeBadRequest, ""},
		{"empty body", ``, dto.ErrorCodeBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations: any repository call fails the test.
			router := setupQuoteRouter(t, nil)

			w := serve(router, http.MethodPost, "/quotes", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantDetails != "" {
				assert.Equal(t, "this field is required", resp.Error.Details[tt.wantDetails])
			}
		})
	}
}

func TestQuoteHandler_CreateQuote_BodyTooLarge(t *testing.T) {
	router := setupQuoteRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quotes",
		strings.NewReader(`{"book":"Moby-Dick","quote":"Call me Ishmael."}`))
	req.Header.Set("Content-Type", "application/json")
	req.Body = http.MaxBytesReader(w, req.Body, 16)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrorCodePayloadTooLarge, decodeError(t, w).Error.Code)
}

func TestQuoteHandler_ListQuotes(t *testing.T) {
	t.Run("empty store returns empty array", func(t *testing.T) {
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().List(mock.Anything).Return(nil, nil)
		})

		w := serve(router, http.MethodGet, "/quotes", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("returns stored quotes", func(t *testing.T) {
		first := domain.NewQuoteAt("q1", "b1", testNow)
		second := domain.NewQuoteAt("q2", "b2", testNow)
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().List(mock.Anything).Return([]*domain.Quote{first, second}, nil)
		})

		w := serve(router, http.MethodGet, "/quotes", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp []QuoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, first.ID.String(), resp[0].ID)
		assert.Equal(t, "b2", resp[1].Book)
	})

	t.Run("storage failure", func(t *testing.T) {
		router := setupQuoteRouter(t, func(m *mocks.MockQuoteRepository) {
			m.EXPECT().List(mock.Anything).Return(nil, errors.New("connection refused"))
		})

		w := serve(router, http.MethodGet, "/quotes", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestQuoteHandler_UpdateQuote(t *testing.T) {
	id := uuid.New()
	path := "/quotes/" + id.String()
	body := `{"book":"new book","quote":"new quote"}`

	tests := []struct {
		name       string
		path       string
		body       string
		setupMock  func(*mocks.MockQuoteRepository)
		wantStatus int
	}{
		{
			name: "success",
			path: path,
			body: body,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, "new book", "new quote", testNow).Return(int64(1), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: path,
			body: body,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, "new book", "new quote", testNow).Return(int64(0), nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			path: path,
			body: body,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, mock.Anything, mock.Anything, mock.Anything).
					Return(int64(0), errors.New("i/o timeout"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed id",
			path:       "/quotes/not-a-uuid",
			body:       body,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing quote field",
			path:       path,
			body:       `{"book":"only book"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			path:       path,
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupQuoteRouter(t, tt.setupMock)

			w := serve(router, http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestQuoteHandler_DeleteQuote(t *testing.T) {
	id := uuid.New()
	path := "/quotes/" + id.String()

	tests := []struct {
		name       string
		path       string
		setupMock  func(*mocks.MockQuoteRepository)
		wantStatus int
	}{
		{
			name: "success",
			path: path,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Delete(mock.Anything, id).Return(int64(1), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: path,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Delete(mock.Anything, id).Return(int64(0), nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			path: path,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Delete(mock.Anything, id).Return(int64(0), errors.New("connection reset by peer"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed id",
			path:       "/quotes/12345",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupQuoteRouter(t, tt.setupMock)

			w := serve(router, http.MethodDelete, tt.path, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestQuoteHandler_RegisterQuoteRoutes(t *testing.T) {
	router := setupQuoteRouter(t, nil)

	routeMap := make(map[string]bool)
	for _, r := range router.Routes() {
		routeMap[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{
		"POST /quotes",
		"GET /quotes",
		"PUT /quotes/:id",
		"DELETE /quotes/:id",
	} {
		assert.True(t, routeMap[expected], "missing route: %s", expected)
	}
}
