package realtime

// Room names are opaque strings. These helpers produce the conventional
// audience names consumed by the dashboard clients. Emitting to a room that
// nobody has joined is a no-op, not an error; rooms come into existence on
// first join and vanish when the last member leaves.

// AdminRoom is the admin-wide dashboard audience.
const AdminRoom = "admin_dashboard"

// UserRoom names the audience of a single user's sessions.
func UserRoom(userID string) string {
	return "user:" + userID
}

// VendorRoom names a vendor's dashboard audience.
func VendorRoom(vendorID string) string {
	return "vendor_dashboard:" + vendorID
}

// OrderRoom names the audience tracking a single order.
func OrderRoom(orderID string) string {
	return "order:" + orderID
}
