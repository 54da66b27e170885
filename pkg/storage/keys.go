package storage

// Durable keys. These are the only values restored at boot.
const (
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
	KeyDarkMode  = "darkMode"
)
