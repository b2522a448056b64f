package domain

// Identity is the authenticated user bound to the current request. A nil
// *Identity means the request is anonymous.
type Identity struct {
	ID         int64
	Username   string
	IsEmployer bool
	Persistent bool
}
