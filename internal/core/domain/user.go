package domain

type User struct {
	ID         int64   `db:"id"`
	Username   string  `db:"username"`
	Password   string  `db:"password"` // bcrypt hashed
	IsEmployer bool    `db:"is_employer"`
	Email      *string `db:"email"`
	Avatar     *string `db:"avatar"`
	About      *string `db:"about"`
}

func NewUser(username, hashedPassword string, isEmployer bool, email *string) *User {
	return &User{
		Username:   username,
		Password:   hashedPassword,
		IsEmployer: isEmployer,
		Email:      email,
	}
}

// Identity returns the request identity bound to this user.
func (u *User) Identity(persistent bool) *Identity {
	return &Identity{
		ID:         u.ID,
		Username:   u.Username,
		IsEmployer: u.IsEmployer,
		Persistent: persistent,
	}
}
