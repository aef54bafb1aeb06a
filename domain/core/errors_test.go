package core

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorHelpersMatchSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want func(error) bool
	}{
		{NewConfigurationError("alpha", "out of range"), IsConfigurationError},
		{NewDegenerateSampleError("normal", "small", "welch_t", errors.New("tied")), IsDegenerateSampleError},
		{NewCacheMismatchError("a", "b"), IsCacheMismatchError},
	}
	for _, tc := range cases {
		if !tc.want(tc.err) {
			t.Errorf("helper did not match %v", tc.err)
		}
	}

	if IsConfigurationError(NewCacheMismatchError("a", "b")) {
		t.Error("helpers must not cross-match")
	}
	if IsDegenerateSampleError(nil) {
		t.Error("nil is not degenerate")
	}
}

func TestDegenerateSampleErrorContext(t *testing.T) {
	err := NewDegenerateSampleError("poisson", "medium", "rank_sum", errors.New("all values tied"))
	for _, want := range []string{"poisson", "medium", "rank_sum", "all values tied"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	bare := NewDegenerateSampleError("beta", "none", "ks", nil)
	if !IsDegenerateSampleError(bare) {
		t.Error("nil cause still marks the cell degenerate")
	}
}

func TestAggregationError(t *testing.T) {
	err := NewAggregationError("normal/welch_t/25/small")
	if !errors.Is(err, ErrAggregation) {
		t.Error("expected aggregation sentinel")
	}
}

func TestHashAndID(t *testing.T) {
	h := NewHash([]byte("abc"))
	if h.IsEmpty() || len(h.String()) != 64 {
		t.Errorf("unexpected hash %q", h)
	}
	if !h.Equals(NewHash([]byte("abc"))) {
		t.Error("same input must hash equal")
	}
	if h.Equals(NewHash([]byte("abd"))) {
		t.Error("different input must not hash equal")
	}

	a, b := NewRunID(), NewRunID()
	if a == b || ID(a).IsEmpty() {
		t.Errorf("run ids must be unique and non-empty: %s %s", a, b)
	}
}
