package client

import (
	"chat-presence/api"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Sends_User_Header_And_Decodes(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/messages":
			var body api.MessageRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(api.MessageResponse{ID: "m1", From: r.Header.Get("User"), To: body.To, Text: body.Text, Type: body.Type})
		case r.Method == http.MethodGet && r.URL.Path == "/messages":
			_ = json.NewEncoder(w).Encode([]api.MessageResponse{{ID: "m1", Text: r.URL.Query().Get("limit")}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(server.URL+"/", "Ana")

	sent, err := c.Whisper("Bob", "psst")
	req.NoError(err)
	req.Equal("Ana", sent.From)
	req.Equal("Bob", sent.To)
	req.Equal("private_message", sent.Type)

	listed, err := c.Messages(5)
	req.NoError(err)
	req.Equal("5", listed[0].Text)

	listed, err = c.Messages(-1)
	req.NoError(err)
	req.Equal("", listed[0].Text)
}

func TestClient_Maps_Error_Body(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "conflict", Message: "participant already exists"})
	}))
	defer server.Close()

	err := New(server.URL, "Ana").Join()
	req.Error(err)
	req.Equal(http.StatusConflict, StatusOf(err))
	req.Contains(err.Error(), "participant already exists")
}

func TestClient_Unreachable_Server(t *testing.T) {
	err := New("http://127.0.0.1:1", "Ana").Heartbeat()
	require.Error(t, err)
	require.Zero(t, StatusOf(err))
}
