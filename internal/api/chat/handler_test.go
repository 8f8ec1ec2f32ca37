package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct {
	gotQuestion string
	turn        *entity.ChatTurn
	err         error
}

func (f *fakeUsecase) Answer(ctx context.Context, question string) (*entity.ChatTurn, error) {
	f.gotQuestion = question
	if f.err != nil {
		return nil, f.err
	}
	return f.turn, nil
}

func doChat(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestChatSuccess(t *testing.T) {
	uc := &fakeUsecase{turn: &entity.ChatTurn{
		Question: "What frontend framework do we use?",
		Answer:   "We use Next.js, per frontend.md.",
	}}
	h := NewHandler(uc, validator.NewValidator())

	rec := doChat(h, `{"prompt": "What frontend framework do we use?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp entity.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "What frontend framework do we use?", resp.Question)
	assert.Equal(t, "We use Next.js, per frontend.md.", resp.Answer)
	assert.Equal(t, "What frontend framework do we use?", uc.gotQuestion)
}

func TestChatEmptyPrompt(t *testing.T) {
	h := NewHandler(&fakeUsecase{}, validator.NewValidator())

	rec := doChat(h, `{"prompt": ""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPromptRequired, decodeError(t, rec))
}

func TestChatBlankPrompt(t *testing.T) {
	h := NewHandler(&fakeUsecase{}, validator.NewValidator())

	rec := doChat(h, `{"prompt": "   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPromptRequired, decodeError(t, rec))
}

func TestChatMalformedBody(t *testing.T) {
	h := NewHandler(&fakeUsecase{}, validator.NewValidator())

	rec := doChat(h, `{"prompt": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPromptRequired, decodeError(t, rec))
}

func TestChatMissingPromptField(t *testing.T) {
	h := NewHandler(&fakeUsecase{}, validator.NewValidator())

	rec := doChat(h, `{"message": "hello"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgPromptRequired, decodeError(t, rec))
}

func TestChatUsecaseFailure(t *testing.T) {
	uc := &fakeUsecase{err: errors.New("model unavailable")}
	h := NewHandler(uc, validator.NewValidator())

	rec := doChat(h, `{"prompt": "question"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternalServerError, decodeError(t, rec))
}
