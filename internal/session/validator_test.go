package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/httpclient"
)

type stubFetcher struct {
	resp *httpclient.Response
	err  error
}

func (s *stubFetcher) Get(_ context.Context, _ string, _ map[string]string) (*httpclient.Response, error) {
	return s.resp, s.err
}

func TestValidateOK(t *testing.T) {
	v, err := New("https://store.example.com", "/gp/cart/view.html", zap.NewNop())
	require.NoError(t, err)

	fetcher := &stubFetcher{resp: &httpclient.Response{StatusCode: 200, Body: []byte("<html>cart</html>")}}
	assert.NoError(t, v.Validate(context.Background(), fetcher))
}

func TestValidateSignInBounce(t *testing.T) {
	v, err := New("https://store.example.com", "/gp/cart/view.html", zap.NewNop())
	require.NoError(t, err)

	fetcher := &stubFetcher{resp: &httpclient.Response{StatusCode: 200, Body: []byte(`<a href="/ap/signin">Sign in</a>`)}}
	assert.Error(t, v.Validate(context.Background(), fetcher))
}

func TestValidateBadStatus(t *testing.T) {
	v, err := New("https://store.example.com", "/", zap.NewNop())
	require.NoError(t, err)

	fetcher := &stubFetcher{resp: &httpclient.Response{StatusCode: 503}}
	assert.Error(t, v.Validate(context.Background(), fetcher))
}
