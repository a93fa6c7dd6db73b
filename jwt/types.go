package jwt

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

type Claims struct {
	Issuer         string `json:"iss,omitempty"`
	Subject        string `json:"sub,omitempty"`
	Audience       string `json:"aud,omitempty"`
	Email          string `json:"email,omitempty"`
	IssuedAt       string `json:"iat,omitempty"`
	ExpirationTime string `json:"exp,omitempty"`
	JWTID          string `json:"jti,omitempty"`
}
