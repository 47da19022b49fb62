package domain

// TokenPair represents access and refresh tokens issued by the backend
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// StoreRef is the store an operator is attached to
type StoreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CurrentUser represents the profile returned by users/me
type CurrentUser struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	IsSuperuser bool      `json:"is_superuser"`
	Store       *StoreRef `json:"store,omitempty"`
}

// RecyclingRecord is a recycling entry as returned by the backend (read-only)
type RecyclingRecord struct {
	SpentAmount      float64 `json:"spent_amount"`
	GetAmount        float64 `json:"get_amount"`
	UnitSellingPrice float64 `json:"unit_selling_price"`
	UnitMinPrice     float64 `json:"unit_min_price"`
}
