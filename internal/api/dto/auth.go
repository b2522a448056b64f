package dto

// RegisterForm is posted by the registration page
type RegisterForm struct {
	Username  string `form:"username" binding:"required,min=3,max=32"`
	Password  string `form:"password" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required"`
	// Checkbox values arrive as "on", "y" or "true"; any non-empty value counts
	Employer string `form:"employer"`
	Email    string `form:"email" binding:"omitempty,email"`
}

func (f RegisterForm) IsEmployer() bool {
	return f.Employer != ""
}

// LoginForm is posted by the login page
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Remember string `form:"remember"`
}

func (f LoginForm) RememberMe() bool {
	return f.Remember != ""
}

// ResetRequestForm asks for a reset link
type ResetRequestForm struct {
	Email string `form:"email" binding:"required,email"`
}

// ResetPasswordForm sets a new password with a reset link
type ResetPasswordForm struct {
	Password  string `form:"password" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required"`
}
