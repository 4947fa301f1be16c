package redisserver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/resp"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/core/service/servicemock"
	"github.com/yndnr/jsonkv-go/internal/server/ratelimit"
	"github.com/yndnr/jsonkv-go/internal/storage/memory"
)

type testConn struct {
	*Conn
	out *bytes.Buffer
}

func newTestConn(t *testing.T) *testConn {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})

	out := &bytes.Buffer{}
	bw := bufio.NewWriter(out)
	return &testConn{
		Conn: &Conn{id: "test", netConn: server, bw: bw, w: resp.NewWriter(bw)},
		out:  out,
	}
}

// reply flushes and returns the bytes written since the last call.
func (tc *testConn) reply() string {
	_ = tc.bw.Flush()
	s := tc.out.String()
	tc.out.Reset()
	return s
}

func args(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func newStoreHandler() *CommandHandler {
	return NewCommandHandler(service.NewKVService(memory.New()), nil, nil, nil)
}

func TestHandle_Scenario(t *testing.T) {
	h := newStoreHandler()
	tc := newTestConn(t)
	ctx := context.Background()

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"SET", "foo", `{"a":1}`}, "+OK\r\n"},
		{[]string{"GET", "foo"}, "$7\r\n{\"a\":1}\r\n"},
		{[]string{"DEL", "foo"}, ":1\r\n"},
		{[]string{"GET", "foo"}, "$-1\r\n"},
		{[]string{"DEL", "foo"}, ":0\r\n"},
	}
	for _, s := range steps {
		quit := h.Handle(ctx, tc.Conn, args(s.args...))
		assert.False(t, quit)
		assert.Equal(t, s.want, tc.reply(), "%v", s.args)
	}
}

func TestHandle_CaseInsensitiveAndOverwrite(t *testing.T) {
	h := newStoreHandler()
	tc := newTestConn(t)
	ctx := context.Background()

	h.Handle(ctx, tc.Conn, args("set", "k", `{"v": 1}`))
	h.Handle(ctx, tc.Conn, args("sEt", "k", `{"v": 2, "w": [true]}`))
	tc.reply()

	h.Handle(ctx, tc.Conn, args("get", "k"))
	assert.Equal(t, "$18\r\n{\"v\":2,\"w\":[true]}\r\n", tc.reply())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"FLUSHALL"}, "-ERR unknown command 'FLUSHALL'\r\n"},
		{"get no key", []string{"GET"}, "-ERR wrong number of arguments for 'get' command\r\n"},
		{"get two keys", []string{"GET", "a", "b"}, "-ERR wrong number of arguments for 'get' command\r\n"},
		{"del two keys", []string{"del", "a", "b"}, "-ERR wrong number of arguments for 'del' command\r\n"},
		{"set no value", []string{"SET", "k"}, "-ERR wrong number of arguments for 'set' command\r\n"},
		{"set with options", []string{"SET", "k", `{}`, "EX", "10"}, "-ERR wrong number of arguments for 'set' command\r\n"},
		{"set invalid json", []string{"SET", "k", `{"a":`}, "-ERR invalid JSON value\r\n"},
		{"set leading zero number", []string{"SET", "k", `{"a":01}`}, "-ERR invalid JSON value\r\n"},
		{"set array", []string{"SET", "k", `[1,2]`}, "-ERR value must be a JSON object\r\n"},
		{"set string", []string{"SET", "k", `"s"`}, "-ERR value must be a JSON object\r\n"},
		{"set number", []string{"SET", "k", `42`}, "-ERR value must be a JSON object\r\n"},
		{"set null", []string{"SET", "k", `null`}, "-ERR value must be a JSON object\r\n"},
		{"empty key", []string{"GET", ""}, "-ERR key must not be empty\r\n"},
		{"ping too many", []string{"PING", "a", "b"}, "-ERR wrong number of arguments for 'ping' command\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No expectations: reaching the executor fails the test.
			exec := servicemock.NewMockExecutor(ctrl)
			h := NewCommandHandler(exec, nil, nil, nil)
			tc := newTestConn(t)

			quit := h.Handle(context.Background(), tc.Conn, args(tt.args...))
			assert.False(t, quit)
			assert.Equal(t, tt.want, tc.reply())
		})
	}
}

func TestHandle_RejectedSetLeavesStoreUntouched(t *testing.T) {
	store := memory.New()
	h := NewCommandHandler(service.NewKVService(store), nil, nil, nil)
	tc := newTestConn(t)
	ctx := context.Background()

	h.Handle(ctx, tc.Conn, args("SET", "k", `{"keep":true}`))
	h.Handle(ctx, tc.Conn, args("SET", "k", `[1]`))
	tc.reply()

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, `{"keep":true}`, got.String())
}

func TestHandle_ExecutorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := servicemock.NewMockExecutor(ctrl)
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk on fire"))

	h := NewCommandHandler(exec, nil, nil, nil)
	tc := newTestConn(t)
	h.Handle(context.Background(), tc.Conn, args("GET", "k"))
	assert.Equal(t, "-ERR internal error\r\n", tc.reply())
}

func TestHandle_PassesParsedCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := servicemock.NewMockExecutor(ctrl)
	exec.EXPECT().
		Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command) (*domain.Result, error) {
			assert.Equal(t, domain.MethodDelete, cmd.Method)
			assert.Equal(t, "user:1", cmd.Key)
			assert.True(t, cmd.Value.IsZero())
			return &domain.Result{Method: cmd.Method, Key: cmd.Key, Found: true}, nil
		})

	h := NewCommandHandler(exec, nil, nil, nil)
	tc := newTestConn(t)
	h.Handle(context.Background(), tc.Conn, args("DEL", "user:1"))
	assert.Equal(t, ":1\r\n", tc.reply())
}

func TestHandle_PingQuit(t *testing.T) {
	h := newStoreHandler()
	tc := newTestConn(t)
	ctx := context.Background()

	assert.False(t, h.Handle(ctx, tc.Conn, args("ping")))
	assert.Equal(t, "+PONG\r\n", tc.reply())

	assert.False(t, h.Handle(ctx, tc.Conn, args("PING", "hi")))
	assert.Equal(t, "$2\r\nhi\r\n", tc.reply())

	assert.True(t, h.Handle(ctx, tc.Conn, args("QUIT")))
	assert.Equal(t, "+OK\r\n", tc.reply())
}

func TestHandle_RateLimited(t *testing.T) {
	h := NewCommandHandler(service.NewKVService(memory.New()), ratelimit.New(1), nil, nil)
	tc := newTestConn(t)
	ctx := context.Background()

	h.Handle(ctx, tc.Conn, args("GET", "k"))
	assert.Equal(t, "$-1\r\n", tc.reply())

	h.Handle(ctx, tc.Conn, args("GET", "k"))
	assert.Equal(t, "-ERR rate limit exceeded\r\n", tc.reply())

	// PING is never limited.
	h.Handle(ctx, tc.Conn, args("PING"))
	assert.Equal(t, "+PONG\r\n", tc.reply())
}
