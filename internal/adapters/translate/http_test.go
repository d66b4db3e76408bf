package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPTranslator_Translate(t *testing.T) {
	req := require.New(t)
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client": q.Get("client"),
			"tl":     q.Get("tl"),
			"dt":     q.Get("dt"),
			"q":      q.Get("q"),
		}
		w.Write([]byte(`[[["Bonjour le monde","Hello world",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	out, err := tr.Translate(context.Background(), "Hello world", "fr")
	req.NoError(err)
	req.Equal("Bonjour le monde", out)
	req.Equal("gtx", gotQuery["client"])
	req.Equal("fr", gotQuery["tl"])
	req.Equal("t", gotQuery["dt"])
	req.Equal("Hello world", gotQuery["q"])
}

func TestHTTPTranslator_ConcatenatesSegments(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[[["Première phrase. ","First sentence. "],["Deuxième phrase.","Second sentence."]],null,"en"]`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	out, err := tr.Translate(context.Background(), "First sentence. Second sentence.", "fr")
	req.NoError(err)
	req.Equal("Première phrase. Deuxième phrase.", out)
}

func TestHTTPTranslator_NonOKStatus(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	_, err := tr.Translate(context.Background(), "hello", "fr")
	req.Error(err)
	req.Contains(err.Error(), "429")
}

func TestHTTPTranslator_MalformedResponse(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"the shape"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	_, err := tr.Translate(context.Background(), "hello", "fr")
	req.Error(err)
}

func TestHTTPTranslator_ContextCancellation(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Translate(ctx, "hello", "fr")
	req.Error(err)
}

func TestParseSegments_EmptyPayload(t *testing.T) {
	req := require.New(t)

	_, err := parseSegments([]byte(`[]`))
	req.Error(err)

	_, err = parseSegments([]byte(`[[]]`))
	req.Error(err)
}

func TestDetectSource(t *testing.T) {
	req := require.New(t)

	req.Equal("en", detectSource("This is clearly an English sentence about nothing in particular."))
	// Short ambiguous input falls back to auto.
	req.Equal("auto", detectSource("ok"))
}
