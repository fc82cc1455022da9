// Package arc implements a [Cache] using the ARC (Adaptive Replacement Cache)
// replacement algorithm.
//
// ARC is an adaptive, scan‑resistant policy that balances recency
// and frequency to improve hit rates over plain LRU
// by splitting the cache into a recency list and a frequency list,
// and self‑tuning the split point from observed re‑access patterns.
//
// The following is a summary (intended for maintainers)
// of the [2003 USENIX FAST ARC paper], with terminology adapted
// to this package's naming.
//
// Glossary and invariants:
//
//   - recent (T1)
//
//     Live entries seen exactly once recently. Key and value resident.
//
//   - frequent (T2)
//
//     Live entries seen at least twice. Key and value resident.
//
//   - recentGhost (B1)
//
//     History of keys evicted from recent; metadata only, no value.
//
//   - frequentGhost (B2)
//
//     History of keys evicted from frequent; metadata only, no value.
//
//   - Ghost entry
//
//     A tombstone recording eviction history. Never returned to callers;
//     exists only to detect "should have kept this" signals that drive
//     adaptation.
//
//   - p
//
//     The adaptive target size for recent within the live capacity budget.
//     Always within [0, capacity]. p near 0 behaves like LRU on frequent;
//     p near capacity favors recency.
//
// Operations:
//
//   - Promotion
//
//     A second access to a key in recent moves it (value intact)
//     into frequent.
//
//   - Ghost hit
//
//     Inserting a key found in a ghost list adjusts p toward the side
//     that would have retained it, re-admits the key into frequent,
//     and may first demote a live entry to make room.
//
//   - Demotion
//
//     When the live lists are full, the least-recently-used entry of
//     either recent or frequent (chosen by p and a tie-break) loses its
//     value and its key becomes a ghost entry.
//
//   - Eviction
//
//     Ghost lists are bounded opportunistically after a cold insert:
//     recentGhost to capacity−p entries and frequentGhost to p entries.
//     A ghost entry trimmed this way is forgotten permanently.
//
// Counts and bounds:
//
//   - len(recent) + len(frequent) ≤ capacity.
//
//     The live lists share one capacity budget.
//
//   - A key resides in at most one of the four lists at any instant.
//
//     Every operation re-derives a key's location by direct lookup;
//     no cross-references between lists exist.
//
//   - inserted, evicted, removed.
//
//     Lifetime counters (cold inserts, ghost trims, explicit removals).
//     Monotonically non-decreasing; they survive [Cache.Clear].
//
// [2003 USENIX FAST ARC paper]: https://www.usenix.org/conference/fast-03/arc-self-tuning-low-overhead-replacement-cache
package arc
