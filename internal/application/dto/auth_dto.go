package dto

// RegisterRequest alta de una empresa nueva junto con su usuario ADMIN.
type RegisterRequest struct {
	CompanyName  string `json:"company_name" validate:"required,min=1,max=200"`
	TaxID        string `json:"tax_id" validate:"max=30"`
	CompanyEmail string `json:"company_email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=30"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token de sesión y usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// PasswordResetRequest solicitud de recuperación de contraseña.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest canje del token de recuperación.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// TokenStatusResponse validez de un token de recuperación.
type TokenStatusResponse struct {
	Valid bool `json:"valid"`
}
