package engine

import (
	"github.com/efreitasn/gbce/internal/domain"
	"github.com/google/btree"
)

// historyEntry wraps a trade with its insertion sequence number, which
// breaks ties between trades sharing a timestamp.
type historyEntry struct {
	seq   uint64
	trade domain.Trade
}

// newestFirst orders entries by timestamp descending, then by insertion
// sequence descending. Min() is therefore the most recent trade.
func newestFirst(a, b historyEntry) bool {
	if !a.trade.Timestamp.Equal(b.trade.Timestamp) {
		return a.trade.Timestamp.After(b.trade.Timestamp)
	}
	return a.seq > b.seq
}

// History is the trade history of a single stock, indexed by a B-tree so
// that iteration always runs from the most recent trade to the oldest.
// It is not safe for concurrent use; the Exchange serializes access.
type History struct {
	tree *btree.BTreeG[historyEntry]
	seq  uint64
}

// NewHistory builds a history from trades given in any order. Trades with
// equal timestamps keep their relative input order when iterated.
func NewHistory(trades []domain.Trade) *History {
	const degree = 32
	h := &History{
		tree: btree.NewG[historyEntry](degree, newestFirst),
	}
	// Inserted back to front so that, among equal timestamps, the earlier
	// input trade gets the higher sequence and iterates first.
	for i := len(trades) - 1; i >= 0; i-- {
		h.Insert(trades[i])
	}
	return h
}

// Insert adds a trade. A trade whose timestamp is not older than any
// stored trade becomes the new most recent entry.
func (h *History) Insert(t domain.Trade) {
	h.seq++
	h.tree.ReplaceOrInsert(historyEntry{seq: h.seq, trade: t})
}

// Len returns the number of stored trades.
func (h *History) Len() int {
	return h.tree.Len()
}

// Latest returns the most recent trade, or false if the history is empty.
func (h *History) Latest() (domain.Trade, bool) {
	e, ok := h.tree.Min()
	if !ok {
		return domain.Trade{}, false
	}
	return e.trade, true
}

// Scan calls fn for each trade from newest to oldest until fn returns false.
func (h *History) Scan(fn func(domain.Trade) bool) {
	h.tree.Ascend(func(e historyEntry) bool {
		return fn(e.trade)
	})
}

// Trades returns a copy of the history, newest first.
func (h *History) Trades() []domain.Trade {
	result := make([]domain.Trade, 0, h.tree.Len())
	h.Scan(func(t domain.Trade) bool {
		result = append(result, t)
		return true
	})
	return result
}
