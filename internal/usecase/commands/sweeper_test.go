//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"pos-checkout/internal/infra/store"
	"pos-checkout/internal/pkg/clock"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/tests/common/builder"

	"github.com/stretchr/testify/assert"
)

func TestExpirySweeper(t *testing.T) {
	ctx := context.Background()

	t.Run("sweep once removes only expired orders", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		clk := clock.NewMockClock(b.Now)
		s := store.NewMemoryOrderStore()
		_, _ = s.Put(ctx, b.BuildPending("old"))
		_, _ = s.Put(ctx, builder.NewOrderBuilder().With(func(nb *builder.OrderBuilder) {
			nb.Now = b.Now.Add(3 * time.Minute)
		}).BuildPending("new"))

		sweeper := commands.NewExpirySweeper(s, clk, time.Minute, discardLogger())
		assert.True(t, sweeper.Enabled())

		assert.Zero(t, sweeper.SweepOnce(ctx))
		clk.Add(6 * time.Minute)
		assert.Equal(t, 1, sweeper.SweepOnce(ctx))
		assert.Equal(t, 1, s.Len())

		_, ok := s.Get(ctx, "new")
		assert.True(t, ok)
	})

	t.Run("disabled sweeper returns immediately", func(t *testing.T) {
		sweeper := commands.NewExpirySweeper(store.NewMemoryOrderStore(), clock.NewRealClock(), 0, discardLogger())
		assert.False(t, sweeper.Enabled())

		done := make(chan struct{})
		go func() {
			sweeper.Run(ctx)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("disabled sweeper did not return")
		}
	})

	t.Run("run sweeps on each tick until cancelled", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		clk := clock.NewMockClock(b.Now.Add(time.Hour))
		s := store.NewMemoryOrderStore()
		_, _ = s.Put(ctx, b.BuildPending("old"))

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			commands.NewExpirySweeper(s, clk, 5*time.Millisecond, discardLogger()).Run(runCtx)
			close(done)
		}()

		assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
		cancel()
		<-done
	})
}
