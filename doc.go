/*
Package copilotdb reads the Copilot Money application's on-disk cache, an
embedded log-structured key-value store holding protobuf-encoded
synchronization-framework documents, and reconstructs the structured
records inside it, without the original schema.

Three layers cooperate:

1. A wire-format decoder for the framework's document/value encoding:
varints and field tags, the recursive Value one-of (null, bool, int, double,
string, bytes, reference, timestamp, geopoint, map, array), the document
envelope, and the store's key encodings (both plain slash-delimited paths
and a binary marker-delimited form).

2. A concurrency-safe access layer. The owning application holds an
exclusive lock on the store, so the Accessor copies the store files into a
temporary directory and reads the copy. Copies are shared between concurrent
readers through a reference-counted cache and removed after a TTL of
idleness.

3. A heuristic fallback decoder (ScanTransactions, ScanAccounts) that scans
raw segment files for fixed byte patterns with no framing awareness, for
stores whose structured keys cannot be trusted. Both paths produce the same
record contract.

# Lenient decoding

The store was reverse engineered; leniency is the policy. A malformed entry
is skipped, an unknown field is ignored, and a key that does not look like a
document is passed over. Callers only ever see an error for structural
problems such as a missing store directory.
*/
package copilotdb
