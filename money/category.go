package money

// Category is a spending category referenced by transactions. The store
// only gives us the id; the name mirrors it until category documents are
// decoded separately.
type Category struct {
	CategoryID string `json:"category_id" msgpack:"category_id"`
	Name       string `json:"name" msgpack:"name"`
}
