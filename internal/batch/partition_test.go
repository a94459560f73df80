package batch

import (
	"slices"
	"testing"
)

func TestCreateBatches(t *testing.T) {
	t.Parallel()

	for total := 0; total <= 23; total++ {
		for size := 1; size <= 7; size++ {
			items := make([]int, total)
			for i := range items {
				items[i] = i
			}
			chunks := CreateBatches(items, size)

			wantChunks := (total + size - 1) / size
			if len(chunks) != wantChunks {
				t.Fatalf("total=%d size=%d: got %d chunks, want %d", total, size, len(chunks), wantChunks)
			}
			var joined []int
			for i, c := range chunks {
				if i < len(chunks)-1 && len(c) != size {
					t.Fatalf("total=%d size=%d: chunk %d has %d items", total, size, i, len(c))
				}
				joined = append(joined, c...)
			}
			if !slices.Equal(joined, items) && !(total == 0 && joined == nil) {
				t.Fatalf("total=%d size=%d: concatenation differs", total, size)
			}
		}
	}
}

func TestCreateBatches_ChunksDoNotAlias(t *testing.T) {
	t.Parallel()

	chunks := CreateBatches([]int{1, 2, 3, 4}, 2)
	chunks[0] = append(chunks[0], 99)
	if chunks[1][0] != 3 {
		t.Fatalf("append to first chunk overwrote second: %v", chunks[1])
	}
}

func TestCreateBatches_PanicsOnZeroSize(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("want panic for size 0")
		}
	}()
	CreateBatches([]int{1}, 0)
}
