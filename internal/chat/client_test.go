package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m.Run()
}

const shoesJSON = `[
	{"item_id":"i1","name":"Running Shoes","store_id":"s1","price":1299,"description":"Lightweight trainers"},
	{"item_id":"i2","name":"Trail Shoes","store_id":"s2","price":1899.5,"description":"Grippy soles"}
]`

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestQuery_Recommend(t *testing.T) {
	var got queryRequest
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response_text":"Here are some shoes","action":"recommend","data":` + shoesJSON + `}`))
	})

	c := New(srv.URL, WithUserID("shopper9"))
	reply, err := c.Query(context.Background(), "  running shoes  ")
	require.NoError(t, err)

	assert.Equal(t, queryRequest{UserID: "shopper9", Text: "running shoes"}, got)
	assert.Equal(t, "Here are some shoes", reply.Text)
	assert.Equal(t, ActionRecommend, reply.Action)
	require.Len(t, reply.Products, 2)
	assert.Equal(t, Product{ItemID: "i1", Name: "Running Shoes", StoreID: "s1", Price: 1299, Description: "Lightweight trainers"}, reply.Products[0])
}

func TestQuery_TextOnlyActions(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		action Action
	}{
		{"inform with empty object", `{"response_text":"We open at 9","action":"inform","data":{}}`, ActionInform},
		{"clarify without data", `{"response_text":"Which size?","action":"clarify"}`, ActionClarify},
		{"recommend with null data", `{"response_text":"Nothing matched","action":"recommend","data":null}`, ActionRecommend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			reply, err := New(srv.URL).Query(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.action, reply.Action)
			assert.NotEmpty(t, reply.Text)
			assert.Empty(t, reply.Products)
		})
	}
}

func TestQuery_Headers(t *testing.T) {
	var headers http.Header
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.Write([]byte(`{"response_text":"ok","action":"inform"}`))
	})

	c := New(srv.URL+"/", WithToken("secret"))
	_, err := c.Query(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, c.SessionID(), headers.Get("X-Session-ID"))
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			code: errors.ErrChat,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			code: errors.ErrSchema,
		},
		{
			name: "products not a list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"response_text":"x","action":"recommend","data":{"name":"shoe"}}`))
			},
			code: errors.ErrSchema,
		},
		{
			name: "wrong product shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"response_text":"x","action":"recommend","data":[{"price":"cheap"}]}`))
			},
			code: errors.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.handler)
			_, err := New(srv.URL).Query(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestQuery_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Query(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrChat))
	assert.Contains(t, err.Error(), "Can't reach the shopping assistant")
}

func TestQuery_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	_, err := New(srv.URL, WithTimeout(20*time.Millisecond)).Query(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, errors.ErrChat, errors.CodeOf(err))
}

func TestQuery_EmptyText(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Query(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrChat, errors.CodeOf(err))
}

func TestSearch(t *testing.T) {
	var query string
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/search", r.URL.Path)
		query = r.URL.Query().Get("q")
		w.Write([]byte(shoesJSON))
	})

	products, err := New(srv.URL).Search(context.Background(), "running shoes & socks")
	require.NoError(t, err)
	assert.Equal(t, "running shoes & socks", query)
	assert.Len(t, products, 2)
}

func TestSearch_NoResults(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	products, err := New(srv.URL).Search(context.Background(), "unicorn")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Search(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrChat))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "http://example.test/api/"
	cfg.Chat.UserID = "owner7"

	c := NewFromConfig(cfg)
	assert.Equal(t, "owner7", c.UserID())
	assert.Equal(t, "http://example.test/api", c.baseURL)
	assert.NotEmpty(t, c.SessionID())
	assert.NotEqual(t, c.SessionID(), NewFromConfig(cfg).SessionID())
}
