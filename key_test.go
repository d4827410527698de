package copilotdb

import (
	"testing"
)

// binKey builds a key in the binary marker-delimited encoding.
func binKey(segs ...string) []byte {
	key := []byte{0x13, 0x37} // leading table bytes, not part of any segment
	key = append(key, "documents"...)
	for _, s := range segs {
		key = append(key, keySep...)
		key = append(key, keyStrByte)
		key = append(key, s...)
		key = append(key, 0x00)
	}
	key = append(key, keySep...)
	key = append(key, keyEndByte)
	return key
}

func TestParseStoreKey_TextualSimple(t *testing.T) {
	ref, ok := ParseStoreKey([]byte("projects/p/databases/d/documents/accounts/acct_1"))
	if !ok {
		t.Fatalf("ok = false, wanted true")
	}
	if ref.Collection != "accounts" || ref.DocumentID != "acct_1" {
		t.Fatalf("ref = %+v, wanted {accounts acct_1}", ref)
	}
}

func TestParseStoreKey_TextualSubcollection(t *testing.T) {
	ref, ok := ParseStoreKey([]byte("projects/p/databases/d/documents/users/u1/categories/c1"))
	if !ok {
		t.Fatalf("ok = false, wanted true")
	}
	if ref.Collection != "users/u1/categories" || ref.DocumentID != "c1" {
		t.Fatalf("ref = %+v, wanted {users/u1/categories c1}", ref)
	}
}

func TestParseStoreKey_Binary(t *testing.T) {
	ref, ok := ParseStoreKey(binKey("transactions", "txn_42"))
	if !ok {
		t.Fatalf("ok = false, wanted true")
	}
	if ref.Collection != "transactions" || ref.DocumentID != "txn_42" {
		t.Fatalf("ref = %+v, wanted {transactions txn_42}", ref)
	}
}

func TestParseStoreKey_BinaryManySegments(t *testing.T) {
	// only the last two segments matter
	ref, ok := ParseStoreKey(binKey("projects", "p", "accounts", "acct_9"))
	if !ok {
		t.Fatalf("ok = false, wanted true")
	}
	if ref.Collection != "accounts" || ref.DocumentID != "acct_9" {
		t.Fatalf("ref = %+v, wanted {accounts acct_9}", ref)
	}
}

func TestParseStoreKey_DenylistedCollection(t *testing.T) {
	for _, key := range [][]byte{
		[]byte("projects/p/databases/d/documents/target_documents/t1"),
		binKey("mutations", "m1"),
	} {
		if ref, ok := ParseStoreKey(key); ok {
			t.Fatalf("ParseStoreKey(%q) = %+v, wanted miss", key, ref)
		}
	}
}

func TestParseStoreKey_Misses(t *testing.T) {
	for _, key := range [][]byte{
		nil,
		[]byte("no marker here"),
		[]byte("documents"),                       // marker but no segments
		binKey("only_one"),                        // fewer than two segments
		{0x00, 0x01, keyStrByte, 'a', 0x00},       // no marker at all
	} {
		if ref, ok := ParseStoreKey(key); ok {
			t.Fatalf("ParseStoreKey(%x) = %+v, wanted miss", key, ref)
		}
	}
}

func TestMatchesCollection(t *testing.T) {
	cases := []struct {
		collection, filter string
		want               bool
	}{
		{"accounts", "", true},
		{"accounts", "accounts", true},
		{"accounts", "transactions", false},
		{"users/u1/categories", "categories", true},
		{"users/u1/categories", "users", false},
	}
	for _, c := range cases {
		if got := matchesCollection(c.collection, c.filter); got != c.want {
			t.Fatalf("matchesCollection(%q, %q) = %v, wanted %v", c.collection, c.filter, got, c.want)
		}
	}
}
