package terrain

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func record(log *[]string, name string, err error) WorkFunc {
	return func() error {
		*log = append(*log, name)
		return err
	}
}

func TestWorkQueueRunsInOrder(t *testing.T) {
	var q WorkQueue
	var log []string
	q.Post(record(&log, "A", nil))
	q.Post(record(&log, "B", nil))
	q.Post(record(&log, "C", nil))

	ran, err := q.Drain(2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.Equal(t, []string{"A", "B"}, log)
	assert.Equal(t, 1, q.Len())

	ran, err = q.Drain(10, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.Equal(t, []string{"A", "B", "C"}, log)
	assert.Zero(t, q.Len())

	ran, err = q.Drain(10, false)
	assert.NoError(t, err)
	assert.Zero(t, ran)
}

func TestWorkQueueErrors(t *testing.T) {
	errB := errors.New("b failed")
	errC := errors.New("c failed")

	tests := []struct {
		name    string
		isolate bool
		ran     []string
		left    int
		errs    []error
	}{
		{"abort", false, []string{"A", "B"}, 2, []error{errB}},
		{"isolate", true, []string{"A", "B", "C", "D"}, 0, []error{errB, errC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q WorkQueue
			var log []string
			q.Post(record(&log, "A", nil))
			q.Post(record(&log, "B", errB))
			q.Post(record(&log, "C", errC))
			q.Post(record(&log, "D", nil))

			ran, err := q.Drain(10, tt.isolate)
			assert.Equal(t, len(tt.ran), ran)
			assert.Equal(t, tt.ran, log)
			assert.Equal(t, tt.left, q.Len())
			assert.Equal(t, tt.errs, multierr.Errors(err))
		})
	}
}

func TestWorkQueueItemMayPost(t *testing.T) {
	var q WorkQueue
	var log []string
	q.Post(func() error {
		log = append(log, "outer")
		q.Post(record(&log, "inner", nil))
		return nil
	})

	_, err := q.Drain(1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
	_, err = q.Drain(1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, log)
}

func TestWorkQueueConcurrentPost(t *testing.T) {
	var q WorkQueue
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Post(func() error {
					mu.Lock()
					count++
					mu.Unlock()
					return nil
				})
			}
		}()
	}
	wg.Wait()

	ran, err := q.Drain(q.Len(), false)
	require.NoError(t, err)
	assert.Equal(t, 1600, ran)
	assert.Equal(t, 1600, count)
}
