package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"transient", NewTransientError(errors.New("rate limit"), 429), true},
		{"wrapped transient", fmt.Errorf("call failed: %w", NewTransientError(errors.New("503"), 503)), true},
		{"eris wrapped transient", eris.Wrap(NewTransientError(errors.New("529"), 529), "extract"), true},
		{"permanent", NewPermanentError(errors.New("bad json")), false},
		{"transient wrapping permanent", NewTransientError(NewPermanentError(errors.New("bad")), 500), false},
		{"message pattern", errors.New("Post \"https://api\": i/o timeout"), true},
		{"overloaded message", errors.New("api error: Overloaded"), true},
		{"context canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	if !IsPermanent(NewPermanentError(errors.New("x"))) {
		t.Error("expected permanent")
	}
	if !IsPermanent(eris.Wrap(NewPermanentError(errors.New("x")), "outer")) {
		t.Error("expected wrapped permanent")
	}
	if IsPermanent(NewTransientError(errors.New("x"), 500)) {
		t.Error("transient is not permanent")
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d transient", code)
		}
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d not transient", code)
		}
	}
}
