package models

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Order{},
		&OrderItem{},
		&Counter{},
		&Notification{},
		&Cart{},
		&CartItem{},
		&Subscription{},
		&Product{},
		&Category{},
		&Address{},
		&Review{},
		&OTP{},
	}
}
