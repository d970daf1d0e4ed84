package predictor

import (
	"context"
	"errors"
	"testing"

	"github.com/Brownie44l1/fault-api/internal/audit"
	"github.com/Brownie44l1/fault-api/internal/model"
)

type fakeClassifier struct {
	dist  model.Distribution
	err   error
	calls int
}

func (f *fakeClassifier) Infer(model.FeatureVector) (model.Distribution, error) {
	f.calls++
	return f.dist, f.err
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

func TestHandle_Success(t *testing.T) {
	c := &fakeClassifier{dist: model.Distribution{0.1, 0.1, 0.7, 0.1}}
	rec := &fakeRecorder{}
	p := New(c, rec, nil)

	resp, err := p.Handle(context.Background(), "http", "req-1", []byte(`{"features": [1, 2, 3, 4]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PredictedClass != "GO Fault" {
		t.Errorf("expected GO Fault, got %q", resp.PredictedClass)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 recorded entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.RequestID != "req-1" || e.Source != "http" || e.PredictedClass != "GO Fault" {
		t.Errorf("unexpected entry %+v", e)
	}
	if len(e.Features) != 4 || e.Features[0] != 1 || e.Features[3] != 4 {
		t.Errorf("unexpected features %v", e.Features)
	}
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"malformed", `{"features": [1, 2`, ErrInvalidJSON},
		{"array body", `[1, 2, 3, 4]`, ErrInvalidJSON},
		{"missing", `{}`, model.ErrInvalidFeatures},
		{"other key", `{"values": [1, 2, 3, 4]}`, model.ErrInvalidFeatures},
		{"empty", `{"features": []}`, model.ErrInvalidFeatures},
		{"three", `{"features": [1, 2, 3]}`, model.ErrInvalidFeatures},
		{"five", `{"features": [1, 2, 3, 4, 5]}`, model.ErrInvalidFeatures},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClassifier{dist: model.Distribution{1, 0, 0, 0}}
			rec := &fakeRecorder{}
			_, err := New(c, rec, nil).Handle(context.Background(), "http", "id", []byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if c.calls != 0 {
				t.Errorf("classifier called %d times on rejected input", c.calls)
			}
			if len(rec.entries) != 0 {
				t.Error("rejected input was recorded")
			}
		})
	}
}

func TestErrInvalidJSON_Message(t *testing.T) {
	if got := ErrInvalidJSON.Error(); got != "invalid json body" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestHandle_RecorderFailureIgnored(t *testing.T) {
	c := &fakeClassifier{dist: model.Distribution{0.9, 0.1, 0, 0}}
	rec := &fakeRecorder{err: errors.New("disk full")}

	resp, err := New(c, rec, nil).Handle(context.Background(), "mqtt", "id", []byte(`{"features": [0, 0, 0, 0]}`))
	if err != nil {
		t.Fatalf("recorder error leaked: %v", err)
	}
	if resp.PredictedClass != "No Fault" {
		t.Errorf("expected No Fault, got %q", resp.PredictedClass)
	}
}

func TestHandle_InferenceErrorNotRecorded(t *testing.T) {
	c := &fakeClassifier{err: errors.New("session run failed")}
	rec := &fakeRecorder{}

	_, err := New(c, rec, nil).Handle(context.Background(), "http", "id", []byte(`{"features": [0, 0, 0, 0]}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, model.ErrInvalidFeatures) || errors.Is(err, ErrInvalidJSON) {
		t.Errorf("inference failure classified as input error: %v", err)
	}
	if len(rec.entries) != 0 {
		t.Error("failed prediction was recorded")
	}
}

func TestHandle_NilRecorder(t *testing.T) {
	c := &fakeClassifier{dist: model.Distribution{0, 0, 0, 1}}
	resp, err := New(c, nil, nil).Handle(context.Background(), "http", "id", []byte(`{"features": [5, 6, 7, 8]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PredictedClass != "GG Fault" {
		t.Errorf("expected GG Fault, got %q", resp.PredictedClass)
	}
}
