package geocode

import "context"

// Address is the place-name breakdown of a coordinate, mapped onto the Indonesian hierarchy.
type Address struct {
	Village     string `json:"village,omitempty"`
	District    string `json:"district,omitempty"`
	Regency     string `json:"regency,omitempty"`
	Province    string `json:"province,omitempty"`
	Country     string `json:"country,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Provider performs one uncached reverse-geocoding request.
type Provider interface {
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}
