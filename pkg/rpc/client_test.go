package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/config"
	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeNode answers getAccountInfo and getMultipleAccounts from accounts and
// fails the first failFirst requests with a JSON-RPC error.
type fakeNode struct {
	accounts  map[string][]byte
	failFirst int32
	calls     atomic.Int32
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call := n.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")
	if call <= n.failFirst {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32005, "message": "node is behind"},
		})
		return
	}

	var result any
	switch req.Method {
	case "getAccountInfo":
		var key string
		_ = json.Unmarshal(req.Params[0], &key)
		result = map[string]any{"context": map[string]any{"slot": 1}, "value": n.account(key)}
	case "getMultipleAccounts":
		var keys []string
		_ = json.Unmarshal(req.Params[0], &keys)
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i] = n.account(k)
		}
		result = map[string]any{"context": map[string]any{"slot": 1}, "value": values}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func (n *fakeNode) account(key string) any {
	data, ok := n.accounts[key]
	if !ok {
		return nil
	}
	return map[string]any{
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"lamports":   2039280,
		"owner":      constants.TokenProgramID.String(),
		"rentEpoch":  0,
	}
}

func testClient(t *testing.T, node *fakeNode, attempts int) *Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	cfg := config.DefaultRPCConfig()
	cfg.RPCURL = srv.URL
	cfg.RateLimit = config.RateLimitConfig{}
	cfg.Retry = config.RetryConfig{Enabled: attempts > 1, MaxAttempts: attempts, InitialBackoff: time.Millisecond}
	return NewClient(cfg)
}

func TestGetMultipleAccounts(t *testing.T) {
	present := solana.NewWallet().PublicKey()
	missing := solana.NewWallet().PublicKey()
	node := &fakeNode{accounts: map[string][]byte{present.String(): {1, 2, 3}}}
	c := testClient(t, node, 1)

	accs, err := c.GetMultipleAccounts(context.Background(), []solana.PublicKey{present, missing})
	require.NoError(t, err)
	require.Len(t, accs, 2)
	require.NotNil(t, accs[0])
	assert.Equal(t, present, accs[0].Address)
	assert.Equal(t, constants.TokenProgramID, accs[0].Owner)
	assert.Equal(t, []byte{1, 2, 3}, accs[0].Data)
	assert.Nil(t, accs[1])
}

func TestGetMultipleAccountsChunks(t *testing.T) {
	keys := make([]solana.PublicKey, MaxAccountsPerRequest+5)
	accounts := map[string][]byte{}
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
		accounts[keys[i].String()] = []byte{byte(i)}
	}
	node := &fakeNode{accounts: accounts}
	c := testClient(t, node, 1)

	accs, err := c.GetMultipleAccounts(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, accs, len(keys))
	assert.Equal(t, int32(2), node.calls.Load())
	for i, a := range accs {
		assert.Equal(t, keys[i], a.Address)
		assert.Equal(t, []byte{byte(i)}, a.Data)
	}
}

func TestGetAccountInfo(t *testing.T) {
	present := solana.NewWallet().PublicKey()
	node := &fakeNode{accounts: map[string][]byte{present.String(): {9}}}
	c := testClient(t, node, 3)

	acc, err := c.GetAccountInfo(context.Background(), present)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, acc.Data)

	_, err = c.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, types.ErrAccountNotFound)
	// A missing account is final and is not retried.
	assert.Equal(t, int32(2), node.calls.Load())
}

func TestRetry(t *testing.T) {
	present := solana.NewWallet().PublicKey()

	node := &fakeNode{accounts: map[string][]byte{present.String(): {7}}, failFirst: 2}
	c := testClient(t, node, 3)
	accs, err := c.GetMultipleAccounts(context.Background(), []solana.PublicKey{present})
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, accs[0].Data)
	assert.Equal(t, int32(3), node.calls.Load())

	node = &fakeNode{failFirst: 5}
	c = testClient(t, node, 2)
	_, err = c.GetMultipleAccounts(context.Background(), []solana.PublicKey{present})
	var rpcErr types.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "getMultipleAccounts", rpcErr.Op)
	assert.Equal(t, int32(2), node.calls.Load())
}

func TestBackoff(t *testing.T) {
	c := NewClient(config.RPCConfig{Retry: config.RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
	}})
	assert.Equal(t, 100*time.Millisecond, c.backoff(0))
	assert.Equal(t, 200*time.Millisecond, c.backoff(1))
	assert.Equal(t, 300*time.Millisecond, c.backoff(4))
}
