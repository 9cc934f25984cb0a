package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"required,max=20"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResult is returned on a successful login. Token is opaque to clients.
type LoginResult struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

type VerifyResult struct {
	Success bool `json:"success"`
}
