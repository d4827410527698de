package copilotdb

import (
	"bytes"
	"regexp"
	"strings"
)

// keyMarker is the substring every document key carries, in both the plain
// path form and the binary marker-delimited form.
const keyMarker = "documents"

// Binary key framing: segments are delimited by keySep; the byte after a
// separator says whether a string segment follows or the key ends. String
// segments are printable-ASCII runs terminated by NUL or the end byte.
const (
	keyEndByte = 0x02
	keyStrByte = 0x05
)

var keySep = []byte{0x00, 0x01}

// internalCollections are the store's own bookkeeping tables; they must
// never surface as a user collection.
var internalCollections = map[string]bool{
	"clients":            true,
	"mutations":          true,
	"mutation_queues":    true,
	"targets":            true,
	"target_documents":   true,
	"target_globals":     true,
	"collection_parents": true,
	"remote_documents":   true,
	"document_overlays":  true,
	"bundles":            true,
	"named_queries":      true,
}

var (
	// A four-segment tail is a subcollection: its collection is the joined
	// three-segment prefix. Checked before the simple two-segment form.
	reSubcollectionKey = regexp.MustCompile(`documents/([\w.-]+/[\w.-]+/[\w.-]+)/([\w.-]+)$`)
	reCollectionKey    = regexp.MustCompile(`documents/([\w.-]+)/([\w.-]+)$`)
)

// DocumentRef is a parsed store key.
type DocumentRef struct {
	Collection string
	DocumentID string
}

// ParseStoreKey recovers the collection and document id from a raw store
// key. It tries the textual slash-delimited path form first and falls back
// to the binary marker-delimited scan when the key carries the marker
// substring. ok is false for keys that do not name a document, including
// anything resolving to an internal bookkeeping collection.
func ParseStoreKey(key []byte) (DocumentRef, bool) {
	if ref, ok := parseTextualKey(key); ok {
		return ref, true
	}
	if !bytes.Contains(key, []byte(keyMarker)) {
		return DocumentRef{}, false
	}
	return parseBinaryKey(key)
}

func parseTextualKey(key []byte) (DocumentRef, bool) {
	s := string(key)
	if m := reSubcollectionKey.FindStringSubmatch(s); m != nil {
		return checkRef(m[1], m[2])
	}
	if m := reCollectionKey.FindStringSubmatch(s); m != nil {
		return checkRef(m[1], m[2])
	}
	return DocumentRef{}, false
}

// parseBinaryKey scans rather than pattern-matches: it walks the buffer
// looking for the 2-byte separator, then reads either the end marker or a
// string segment. The last segment is the document id, the one before it
// the collection.
func parseBinaryKey(key []byte) (DocumentRef, bool) {
	var segs []string
	pos := 0
	for {
		i := bytes.Index(key[pos:], keySep)
		if i < 0 {
			break
		}
		pos += i + len(keySep)
		if pos >= len(key) {
			break
		}
		switch key[pos] {
		case keyEndByte:
			pos = len(key)
		case keyStrByte:
			pos++
			start := pos
			for pos < len(key) && isPrintableASCII(key[pos]) {
				pos++
			}
			if pos > start && (pos == len(key) || key[pos] == 0x00 || key[pos] == keyEndByte) {
				segs = append(segs, string(key[start:pos]))
			}
		}
		if pos >= len(key) {
			break
		}
	}
	if len(segs) < 2 {
		return DocumentRef{}, false
	}
	return checkRef(segs[len(segs)-2], segs[len(segs)-1])
}

func checkRef(collection, docID string) (DocumentRef, bool) {
	if internalCollections[collection] {
		return DocumentRef{}, false
	}
	// subcollection paths are denylisted by their leading segment too
	if head, _, ok := strings.Cut(collection, "/"); ok && internalCollections[head] {
		return DocumentRef{}, false
	}
	return DocumentRef{Collection: collection, DocumentID: docID}, true
}

func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// matchesCollection applies the iteration collection filter: exact match, or
// a subcollection whose path ends with /filter.
func matchesCollection(collection, filter string) bool {
	if filter == "" {
		return true
	}
	return collection == filter || strings.HasSuffix(collection, "/"+filter)
}
