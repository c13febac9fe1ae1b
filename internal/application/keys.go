package application

// Key spaces in the key-value store.
const (
	UserPrefix    = "users:"
	ProductPrefix = "products:"
	OrderPrefix   = "orders:"
)

func UserKey(id string) string    { return UserPrefix + id }
func ProductKey(id string) string { return ProductPrefix + id }
func OrderKey(id string) string   { return OrderPrefix + id }

// Index lists: product ids owned by a user, order ids a user is party to.
func UserProductsKey(userID string) string { return "user_products:" + userID }
func UserOrdersKey(userID string) string   { return "user_orders:" + userID }
