package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newTestRPCServer(t *testing.T, handler func(req rpcRequest) interface{}) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      0,
			"result":  handler(req),
		}))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClient_GetAccountInfo(t *testing.T) {
	keys := generateKeys(t, 2)
	account, owner := public(keys[0]), public(keys[1])
	data := []byte{1, 2, 3, 4}

	server, _ := newTestRPCServer(t, func(req rpcRequest) interface{} {
		assert.Equal(t, "getAccountInfo", req.Method)
		require.Len(t, req.Params, 2)

		var config map[string]string
		require.NoError(t, json.Unmarshal(req.Params[1], &config))
		assert.Equal(t, "base64", config["encoding"])
		assert.Equal(t, "confirmed", config["commitment"])

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"lamports":   1000,
				"owner":      base58.Encode(owner),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}
	})

	info, err := New(server.URL).GetAccountInfo(context.Background(), account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, owner, info.Owner)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, 1000, info.Lamports)
}

func TestClient_GetAccountInfo_NotFound(t *testing.T) {
	server, _ := newTestRPCServer(t, func(req rpcRequest) interface{} {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value":   nil,
		}
	})

	_, err := New(server.URL).GetAccountInfo(context.Background(), public(generateKeys(t, 1)[0]), CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_GetAccountInfo_RetriesRateLimit(t *testing.T) {
	owner := public(generateKeys(t, 1)[0])

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":0,"error":{"code":429,"message":"too many requests"}}`))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      0,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value": map[string]interface{}{
					"lamports": 1,
					"owner":    base58.Encode(owner),
					"data":     []string{"", "base64"},
				},
			},
		}))
	}))
	defer server.Close()

	info, err := New(server.URL).GetAccountInfo(context.Background(), public(generateKeys(t, 1)[0]), CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, owner, info.Owner)
	assert.Empty(t, info.Data)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_GetAccountInfo_NotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":0,"error":{"code":-32602,"message":"invalid params"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).GetAccountInfo(context.Background(), public(generateKeys(t, 1)[0]), CommitmentConfirmed)
	assert.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_GetAccountInfo_CanceledContext(t *testing.T) {
	server, calls := newTestRPCServer(t, func(req rpcRequest) interface{} {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL).GetAccountInfo(ctx, public(generateKeys(t, 1)[0]), CommitmentConfirmed)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, atomic.LoadInt32(calls))
}
