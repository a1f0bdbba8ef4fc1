package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type captured struct {
	path string
	key  string
	body generateRequest
}

func newTestServer(t *testing.T, status int, reply string) (*Client, *captured) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	got := &captured{}

	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		got.path = string(ctx.Path())
		got.key = string(ctx.QueryArgs().Peek("key"))
		_ = json.Unmarshal(ctx.PostBody(), &got.body)
		ctx.SetStatusCode(status)
		ctx.SetBodyString(reply)
	}}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	hc := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return NewClient("http://gemini.test/v1/models", "gemini-2.5-flash-lite", "k3y", WithHTTPClient(hc)), got
}

func TestGenerate(t *testing.T) {
	reply := `{"candidates":[{"content":{"parts":[{"text":"[{\"question\":\"q\"}]"}]}}]}`
	c, got := newTestServer(t, fasthttp.StatusOK, reply)

	text, err := c.Generate(context.Background(), "prompt", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"q"}]`, text)

	assert.Equal(t, "/v1/models/gemini-2.5-flash-lite:generateContent", got.path)
	assert.Equal(t, "k3y", got.key)
	require.Len(t, got.body.Contents, 1)
	parts := got.body.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "prompt", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), parts[1].InlineData.Data)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
	}{
		{"server error", fasthttp.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", fasthttp.StatusTooManyRequests, ``},
		{"not json", fasthttp.StatusOK, `<html>`},
		{"no candidates", fasthttp.StatusOK, `{"candidates":[]}`},
		{"no parts", fasthttp.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.reply)
			_, err := c.Generate(context.Background(), "p", "image/png", nil)
			assert.Error(t, err)
		})
	}
}

func TestGenerateHonorsContext(t *testing.T) {
	c, _ := newTestServer(t, fasthttp.StatusOK, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Generate(ctx, "p", "image/png", nil)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.Generate(ctx, "p", "image/png", nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	c := NewClient("", "m", "a b")
	assert.Equal(t, DefaultEndpoint+"/m:generateContent?key=a+b", c.url())
}
