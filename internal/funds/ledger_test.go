package funds

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veilcredit/pkg/domain-errors"
)

func TestCreditAccumulates(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, "alice", 150))
	require.NoError(t, ledger.Credit(ctx, "alice", 50))
	require.NoError(t, ledger.Credit(ctx, "bob", 10))

	assert.Equal(t, uint64(200), ledger.Balance("alice"))
	assert.Equal(t, uint64(10), ledger.Balance("bob"))
	assert.Equal(t, uint64(0), ledger.Balance("unknown"))
}

func TestCreditZeroIsNoop(t *testing.T) {
	ledger := NewMemoryLedger()
	require.NoError(t, ledger.Credit(context.Background(), "alice", 0))
	assert.Equal(t, uint64(0), ledger.Balance("alice"))
}

func TestCreditEmptyAccountRejected(t *testing.T) {
	ledger := NewMemoryLedger()
	err := ledger.Credit(context.Background(), "", 10)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestConcurrentCredits(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Credit(ctx, "alice", 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(100), ledger.Balance("alice"))
}
