package parallel

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_EveryRowOnce(t *testing.T) {
	for _, cfg := range []Config{
		Sequential(),
		DefaultConfig(),
		{Workers: 4, Chunk: 3},
		{Workers: 64, Chunk: 1},
	} {
		t.Run(fmt.Sprintf("%d/%d", cfg.Workers, cfg.Chunk), func(t *testing.T) {
			n := 97
			hits := make([]int32, n)
			require.NoError(t, Rows(n, cfg, func(i int) error {
				atomic.AddInt32(&hits[i], 1)
				return nil
			}))
			for i, h := range hits {
				assert.EqualValues(t, 1, h, "row %d", i)
			}
		})
	}
}

func TestRows_SequentialOrder(t *testing.T) {
	var order []int
	require.NoError(t, Rows(5, Sequential(), func(i int) error {
		order = append(order, i)
		return nil
	}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRows_SmallBatchStaysOnCaller(t *testing.T) {
	var order []int
	cfg := Config{Workers: 8, Chunk: 16}
	require.NoError(t, Rows(16, cfg, func(i int) error {
		order = append(order, i) // unsynchronized; the race detector flags any goroutine
		return nil
	}))
	assert.Len(t, order, 16)
}

func TestRows_Zero(t *testing.T) {
	require.NoError(t, Rows(0, DefaultConfig(), func(int) error {
		t.Fatal("f must not be called")
		return nil
	}))
}

func TestRows_Error(t *testing.T) {
	cfg := Config{Workers: 4, Chunk: 2}
	err := Rows(100, cfg, func(i int) error {
		if i == 41 {
			return fmt.Errorf("row %d", i)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "row 41", err.Error())

	err = Rows(100, cfg, func(i int) error {
		if i == 41 || i == 77 {
			return fmt.Errorf("row %d", i)
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, []string{"row 41", "row 77"}, err.Error())

	boom := errors.New("boom")
	assert.ErrorIs(t, Rows(3, Sequential(), func(i int) error {
		if i == 1 {
			return boom
		}
		return nil
	}), boom)
}

func BenchmarkRows(b *testing.B) {
	n := 10000
	work := func(j int) error {
		_ = fmt.Sprint(j)
		return nil
	}

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Rows(n, DefaultConfig(), work)
		}
	})
	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Rows(n, Sequential(), work)
		}
	})
}
