package dira

import "github.com/pfrederiksen/dira-lottery/internal/lottery"

// BatchSize is the number of subscriber fetches that may be in flight at once.
const BatchSize = 10

// Chunk splits items into consecutive groups of size; the last group may be
// shorter. Order is preserved. A size below 1 is treated as 1.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// DuplicateLotteries returns the lottery numbers that appear more than once in
// refs, in order of first appearance. Aggregate logs them once per run and
// keeps the last occurrence of each.
func DuplicateLotteries(refs []lottery.Ref) []string {
	counts := make(map[string]int, len(refs))
	order := make([]string, 0)
	for _, ref := range refs {
		if counts[ref.LotteryNumber] == 0 {
			order = append(order, ref.LotteryNumber)
		}
		counts[ref.LotteryNumber]++
	}

	dups := make([]string, 0)
	for _, n := range order {
		if counts[n] > 1 {
			dups = append(dups, n)
		}
	}
	return dups
}
