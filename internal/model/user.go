package model

// Name holds a user's given and family names.
type Name struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Geolocation is the lat/long pair attached to an address. The API returns
// both as strings.
type Geolocation struct {
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

// Address is a user's optional postal address.
type Address struct {
	City        string      `json:"city"`
	Street      string      `json:"street"`
	Number      int         `json:"number"`
	Zipcode     string      `json:"zipcode"`
	Geolocation Geolocation `json:"geolocation"`
}

// User is a directory entry. Password is write-only: it is set on create or
// update requests and blanked in everything the gateways return.
type User struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Password string   `json:"password,omitempty"`
	Name     Name     `json:"name"`
	Address  *Address `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
}

// EntityID implements Entity.
func (u User) EntityID() int64 { return u.ID }

// Sanitized returns a copy of u with the password blanked.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
