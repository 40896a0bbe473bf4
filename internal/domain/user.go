package domain

import "context"

// User is a single user record. The JSON shape matches the demo endpoint,
// so the same encoding is used for the remote response and for both
// persisted collections.
type User struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Website  string   `json:"website,omitempty"`
	Address  Address  `json:"address"`
	Company  *Company `json:"company,omitempty"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     *Geo   `json:"geo,omitempty"`
}

type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase,omitempty"`
	BS          string `json:"bs,omitempty"`
}

// UserSource fetches the remote user list.
type UserSource interface {
	FetchUsers(ctx context.Context) ([]User, error)
}
