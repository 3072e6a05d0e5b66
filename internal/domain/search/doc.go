// Package search builds and queries the inverted index used for natural
// language tool discovery.
//
// Index layout:
//   - term -> roaring bitmap of entry IDs
//   - domain -> bitmap, operation -> bitmap
//   - entry ID -> catalogue entry, name -> entry ID
//   - sorted vocabulary (prefix scans) and a length bucket table (fuzzy scans)
//
// Terms are stored both with punctuation stripped ("originpool") and split
// on punctuation ("origin", "pool"). Equal scores rank by entry name.
//
// Scoring per query term:
//   - exact term match: 1.0
//   - fuzzy match within MaxEditDistance: (1 - d/MaxEditDistance) * 0.7
//   - literal prefix match: 0.5
//
// An Index is immutable. Service publishes a freshly built index through an
// atomic pointer so concurrent readers never observe a partial rebuild.
package search
