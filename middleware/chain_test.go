package middleware

import "testing"

type fakeCtx struct {
	calls *[]string
}

func recordingProcessor(name string, result Result) Processor[fakeCtx] {
	return func(ctx fakeCtx) Result {
		*ctx.calls = append(*ctx.calls, name)
		return result
	}
}

func TestChainRunsAllOnSuccess(t *testing.T) {
	var calls []string
	chain := NewChain(
		recordingProcessor("auth", Ok()),
		recordingProcessor("rate-limit", Ok()),
		recordingProcessor("logging", Ok()),
	)
	result := chain.Run(fakeCtx{calls: &calls})
	if !result.Success {
		t.Fatalf("expected overall success, got %+v", result)
	}
	if len(calls) != 3 {
		t.Fatalf("expected all 3 processors to run, got %v", calls)
	}
}

func TestChainShortCircuitsOnFirstFailure(t *testing.T) {
	var calls []string
	chain := NewChain(
		recordingProcessor("auth", Fail(401, "unauthorized")),
		recordingProcessor("rate-limit", Ok()),
	)
	result := chain.Run(fakeCtx{calls: &calls})
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Status != 401 || result.ErrorMessage != "unauthorized" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(calls) != 1 {
		t.Fatalf("expected short-circuit after 1 processor, got %v", calls)
	}
}

func TestChainEmptyIsSuccess(t *testing.T) {
	chain := NewChain[fakeCtx]()
	result := chain.Run(fakeCtx{calls: &[]string{}})
	if !result.Success {
		t.Fatal("expected empty chain to succeed")
	}
}
