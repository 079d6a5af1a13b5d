package model

import "time"

// Category classifies a notification into one of the closed set of
// product areas. The set is deliberately exhaustive: switch statements
// over it should not carry a default branch for known values.
type Category string

const (
	CategoryBookings Category = "bookings"
	CategoryInvoices Category = "invoices"
	CategoryPOS      Category = "pos"
	CategorySystem   Category = "system"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryBookings,
		CategoryInvoices,
		CategoryPOS,
		CategorySystem,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBookings, CategoryInvoices, CategoryPOS, CategorySystem:
		return true
	}
	return false
}

// Label returns the human-readable name for the category.
func (c Category) Label() string {
	switch c {
	case CategoryBookings:
		return "Bookings"
	case CategoryInvoices:
		return "Invoices"
	case CategoryPOS:
		return "Point of Sale"
	case CategorySystem:
		return "System"
	}
	return string(c)
}

// Icon returns the glyph shown next to notifications of this category.
func (c Category) Icon() string {
	switch c {
	case CategoryBookings:
		return "📅"
	case CategoryInvoices:
		return "🧾"
	case CategoryPOS:
		return "💳"
	case CategorySystem:
		return "⚙"
	}
	return "•"
}

// Notification is a single entry in the notification feed.
type Notification struct {
	// ID is the unique identifier, assigned at creation and never reused.
	ID string `json:"id"`

	// Title is the short headline shown in the feed.
	Title string `json:"title"`

	// Body is optional longer text.
	Body string `json:"body,omitempty"`

	// Category classifies the notification.
	Category Category `json:"category"`

	// Path is an optional in-app route to navigate to when the
	// notification is activated.
	Path string `json:"path,omitempty"`

	// Date is the creation timestamp. Stored order and temporal order may
	// diverge, so consumers must re-sort by Date before display.
	Date time.Time `json:"date"`

	// Read transitions false to true exactly once and never reverts.
	Read bool `json:"read"`
}

// Popup wraps a notification with an identity of its own. The same
// notification can be popped more than once, each time under a fresh
// PopupID.
type Popup struct {
	Notification

	// PopupID identifies this toast instance, distinct from the
	// underlying notification ID.
	PopupID string `json:"popupId"`
}
