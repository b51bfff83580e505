package executor

import (
	"context"
	"io"
	"sync"
)

// mockProcessRunner records invocations and answers --plugin-info.
type mockProcessRunner struct {
	mu sync.Mutex

	info     string
	runFunc  func(ctx context.Context, args []string, stdin []byte) ([]byte, []byte, error)
	block    bool
	calls    [][]string
	lastData []byte
}

func (m *mockProcessRunner) Run(ctx context.Context, _ string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	var data []byte
	if stdin != nil {
		data, _ = io.ReadAll(stdin)
	}

	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.lastData = data
	m.mu.Unlock()

	if len(args) == 1 && args[0] == "--plugin-info" {
		return []byte(m.info), nil, nil
	}
	if m.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if m.runFunc != nil {
		return m.runFunc(ctx, args, data)
	}
	return nil, nil, nil
}
