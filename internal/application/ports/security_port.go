package ports

// TokenIssuer emite y verifica tokens de sesión opacos. El núcleo no inspecciona su contenido.
type TokenIssuer interface {
	// Issue genera un token para el sujeto (email del usuario).
	Issue(subject string) (string, error)
	// Verify devuelve el sujeto o error si el token es inválido o expiró.
	Verify(token string) (string, error)
}

// PasswordHasher hash unidireccional con sal.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}
