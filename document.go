package copilotdb

// Envelope field numbers. The outer message wraps either a tombstone (field
// 1) or the document body (field 2); the body carries the name (1), the
// field map entries (2) and create/update timestamps (3, 4).
const (
	fEnvTombstone = 1
	fEnvDocument  = 2

	fDocName   = 1
	fDocFields = 2
)

// parseDocument unwraps the outer envelope of a stored entry and returns its
// field map. A tombstone or an envelope without a document body yields an
// empty map, not an error.
func parseDocument(buf []byte) (map[string]Value, error) {
	fields := make(map[string]Value)
	pos := 0
	for pos < len(buf) {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		field, wt := parseTag(tag)
		if field != fEnvDocument || wt != WireBytes {
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return nil, err
			}
			pos += skip
			continue
		}
		_, sub, err := wantBytes(buf, pos, len(buf), field, wt)
		if err != nil {
			return nil, err
		}
		pos = sub.end
		if err := parseDocumentBody(buf, sub.start, sub.end, fields); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func parseDocumentBody(buf []byte, start, end int, fields map[string]Value) error {
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return err
		}
		pos += n
		field, wt := parseTag(tag)
		if field != fDocFields || wt != WireBytes {
			// name, timestamps, anything newer
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return err
			}
			pos += skip
			continue
		}
		_, sub, err := wantBytes(buf, pos, end, field, wt)
		if err != nil {
			return err
		}
		pos = sub.end
		key, val, ok, err := parseMapEntry(buf, sub.start, sub.end)
		if err != nil {
			return err
		}
		if ok {
			fields[key] = val
		}
	}
	return nil
}
