// Package sales zamienia wiersze eksportów z adquirentes (Rede, PagSeguro, Sigma...)
// na kanoniczny rekord NormalizedSale i buduje rekordy gotowe do zapisu.
package sales

import "sort"

// Cell to jedna para nagłówek -> wartość tak, jak przyszła z pliku.
type Cell struct {
	Key   string
	Value any
}

// RawRow zachowuje kolejność kolumn z pliku. Klucze są niezaufane:
// mogą mieć cudzysłowy, różną wielkość liter i akcenty.
type RawRow []Cell

// RowFromMap buduje wiersz z mapy (kolejność kluczy alfabetyczna).
func RowFromMap(m map[string]any) RawRow {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	row := make(RawRow, 0, len(keys))
	for _, k := range keys {
		row = append(row, Cell{Key: k, Value: m[k]})
	}
	return row
}

func (r RawRow) Keys() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Key
	}
	return out
}

// Lookup zwraca wartość dla dokładnie takiego klucza.
func (r RawRow) Lookup(key string) (any, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}
