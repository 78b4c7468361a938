package core

import (
	"errors"
	"sync"
	"testing"
)

// wantErrIs fails the test unless err wraps target (every production
// error path here runs through utils.Wrap, so direct == comparison
// against a sentinel never matches).
func wantErrIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got %v", target, err)
	}
}

// resetSingletons clears every package-level singleton manager so each
// test can install a fresh instance via its InitXxx constructor. The
// production binary calls each InitXxx exactly once at startup; tests
// need many independent instances, hence this test-only reset helper.
func resetSingletons() {
	swapOnce = sync.Once{}
	swapMgr = nil
	bondOnce = sync.Once{}
	bondMgr = nil
	configOnce = sync.Once{}
	configMgr = nil
	evtOnce = sync.Once{}
	evtMgr = nil
	sigOnce = sync.Once{}
	sigMgr = nil
	nomOnce = sync.Once{}
	nomMgr = nil
}
