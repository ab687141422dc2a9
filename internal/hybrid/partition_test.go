package hybrid

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTotalTasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hb   float64
		bits int
		want int
	}{
		{20, 10, 4}, // ceil(1.442695*20/9) = ceil(3.206)
		{0, 10, 0},
		{100, 28, 6},
		{1, 62, 1},
		{20, 1, 0},
	}
	for _, tt := range tests {
		if got := TotalTasks(tt.hb, tt.bits); got != tt.want {
			t.Errorf("TotalTasks(%v, %d) = %d, want %d", tt.hb, tt.bits, got, tt.want)
		}
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		workers []int
		want    map[int]int
	}{
		{"4 over 3 workers", 4, []int{1, 2, 3}, map[int]int{1: 2, 2: 1, 3: 1}},
		{"fewer tasks than workers", 2, []int{1, 2, 3, 4}, map[int]int{1: 1, 2: 1, 3: 0, 4: 0}},
		{"even split", 6, []int{1, 2, 3}, map[int]int{1: 2, 2: 2, 3: 2}},
		{"zero tasks", 0, []int{1, 2}, map[int]int{1: 0, 2: 0}},
		{"no workers", 5, nil, map[int]int{}},
		{"non-contiguous ids", 5, []int{7, 3}, map[int]int{7: 3, 3: 2}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Partition(tt.total, tt.workers); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Partition(%d, %v) = %v, want %v", tt.total, tt.workers, got, tt.want)
			}
		})
	}
}

func TestWorkerIDs(t *testing.T) {
	t.Parallel()

	if ids := WorkerIDs(1); len(ids) != 0 {
		t.Errorf("WorkerIDs(1) = %v, want none", ids)
	}
	if ids := WorkerIDs(4); !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Errorf("WorkerIDs(4) = %v, want [1 2 3]", ids)
	}
}

func TestPartition_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("counts sum to the total and differ by at most one", prop.ForAll(
		func(total, workers int) bool {
			assignment := Partition(total, WorkerIDs(workers+1))
			if len(assignment) != workers {
				return false
			}
			sum, lo, hi := 0, total, 0
			for _, n := range assignment {
				sum += n
				lo, hi = min(lo, n), max(hi, n)
			}
			return sum == total && hi-lo <= 1
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
