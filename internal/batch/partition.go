// Package batch dzieli rekordy na paczki, dobiera strategię zapisu
// i wykonuje paczki z ponawianiem (backoff wykładniczy).
package batch

// CreateBatches tnie items na kawałki po size zachowując kolejność.
// Ostatni kawałek może być krótszy. Wymaga size >= 1.
func CreateBatches[T any](items []T, size int) [][]T {
	if size < 1 {
		panic("batch: size musi być >= 1")
	}
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}
