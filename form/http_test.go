package form_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/powgate/form"
)

func newConfig(action string) form.Config {
	cfg := form.DefaultConfig()
	cfg.Action = action
	cfg.PreviousProof = "0"
	cfg.PreviousHash = "abc"
	cfg.Fields = map[string]string{"email": "user@example.com"}
	return cfg
}

func TestHTTP_Submit(t *testing.T) {
	t.Parallel()
	received := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		received <- r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	f, err := form.NewHTTP(newConfig(srv.URL+"/register"), srv.Client())
	require.NoError(t, err)

	require.NoError(t, f.Submit(context.Background(), "12"))
	values := <-received
	require.Equal(t, "12", values.Get("proof"))
	require.Equal(t, "0", values.Get("last_proof"))
	require.Equal(t, "abc", values.Get("last_hash"))
	require.Equal(t, "user@example.com", values.Get("email"))
	require.EqualValues(t, 1, f.Submissions())
}

func TestHTTP_SubmitRejected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid proof", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	f, err := form.NewHTTP(newConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	err = f.Submit(context.Background(), "11")
	require.ErrorIs(t, err, form.ErrRejected)
}

func TestHTTP_ProofFieldOverridesExtraFields(t *testing.T) {
	cfg := newConfig("http://localhost/register")
	cfg.Fields["proof"] = "stale"
	cfg.ProofField = "proof"

	f, err := form.NewHTTP(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, "12", f.Values("12").Get("proof"))
}

func TestHTTP_SubmitEnabled(t *testing.T) {
	f, err := form.NewHTTP(newConfig("http://localhost/register"), nil)
	require.NoError(t, err)
	require.True(t, f.SubmitEnabled())

	f.SetSubmitEnabled(false)
	require.False(t, f.SubmitEnabled())
	f.SetSubmitEnabled(true)
	require.True(t, f.SubmitEnabled())
}

func TestNewHTTP_InvalidAction(t *testing.T) {
	_, err := form.NewHTTP(form.DefaultConfig(), nil)
	require.ErrorIs(t, err, form.ErrMissingAction)

	cfg := form.DefaultConfig()
	cfg.Action = "not a url"
	_, err = form.NewHTTP(cfg, nil)
	require.Error(t, err)
}
