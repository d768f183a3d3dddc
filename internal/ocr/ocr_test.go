package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func TestClampConfidence(t *testing.T) {
	cases := map[float64]float64{
		0.875: 0.875,
		1.5:   1,
		-0.1:  0,
		0:     0,
		1:     1,
	}
	for in, want := range cases {
		if got := clampConfidence(in); got != want {
			t.Fatalf("clampConfidence(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeImageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := NormalizeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 10 {
		t.Fatalf("small image must not be enlarged, got width %d", decoded.Bounds().Dx())
	}
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	if _, err := NormalizeImage([]byte("definitely not an image")); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
}

func TestHTTPEngineRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recognize" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  hello world  ", "confidence": 87.5}`))
	}))
	defer srv.Close()

	engine := HTTPEngine{BaseURL: srv.URL}
	res, err := engine.Recognize(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RawText != "hello world" {
		t.Fatalf("expected trimmed text, got %q", res.RawText)
	}
	if res.Confidence != 0.875 {
		t.Fatalf("expected confidence 0.875, got %v", res.Confidence)
	}
}

func TestSharedEngineInitializedOnce(t *testing.T) {
	var inits int64
	s := &Service{NewEngine: func(ctx context.Context) (Engine, error) {
		atomic.AddInt64(&inits, 1)
		return MockEngine{Text: "ok", Confidence: 0.9}, nil
	}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.sharedEngine(context.Background()); err != nil {
				t.Errorf("sharedEngine: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&inits); n != 1 {
		t.Fatalf("expected exactly one initialization, got %d", n)
	}
}

func TestSharedEngineRetriesAfterFailedInit(t *testing.T) {
	var calls int
	s := &Service{NewEngine: func(ctx context.Context) (Engine, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("cold start failed")
		}
		return MockEngine{}, nil
	}}

	if _, err := s.sharedEngine(context.Background()); err == nil {
		t.Fatalf("expected first initialization to fail")
	}
	if _, err := s.sharedEngine(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 factory calls, got %d", calls)
	}
}
