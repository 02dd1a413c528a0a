package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,role"`
}

// UpdateUserRequest datos editables por un administrador.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"required,email"`
}

// ChangeRoleRequest cambio de rol.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	Role                string    `json:"role"`
	CompanyID           string    `json:"company_id"`
	SecondaryCompanyIDs []string  `json:"secondary_company_ids"`
	Active              bool      `json:"active"`
	PhotoRef            string    `json:"photo_ref,omitempty"`
	EmailNotifications  bool      `json:"email_notifications"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// UserInfoRequest consulta de un usuario por email; vacío es el propio usuario.
type UserInfoRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// PermissionsResponse permisos que concede el rol.
type PermissionsResponse struct {
	CanCreate          bool `json:"can_create"`
	CanEdit            bool `json:"can_edit"`
	CanDelete          bool `json:"can_delete"`
	CanManageUsers     bool `json:"can_manage_users"`
	CanManageCompanies bool `json:"can_manage_companies"`
	IsAdmin            bool `json:"is_admin"`
}

// UserInfoResponse usuario junto con sus permisos.
type UserInfoResponse struct {
	UserResponse
	Permissions PermissionsResponse `json:"permissions"`
}

// UpdateProfileRequest datos que el propio usuario puede editar.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateEmailRequest cambio de email; exige la contraseña actual.
type UpdateEmailRequest struct {
	NewEmail        string `json:"new_email" validate:"required,email"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// UpdateEmailResponse el token anterior queda asociado al email viejo: se emite uno nuevo.
type UpdateEmailResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ChangePasswordRequest cambio de contraseña; la nueva debe ser distinta de la actual.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// NotificationsRequest preferencia de notificaciones por correo.
type NotificationsRequest struct {
	Enabled bool `json:"enabled"`
}
