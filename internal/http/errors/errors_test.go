package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrNotConnected.WithDetail("/auth/tiktok/login"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "NOT_CONNECTED", body["code"])
	require.Equal(t, "/auth/tiktok/login", body["detail"])
}

func TestWriteError_GenericErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("db password=hunter2 refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "hunter2")
}

func TestFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("controller: %w", ErrInvalidState)
	require.Same(t, ErrInvalidState, FromError(wrapped))
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	_ = ErrProviderDenied.WithDetail("user cancelled")
	require.Empty(t, ErrProviderDenied.Detail)
}
