package accounts

import "github.com/goliatone/go-accounts/middleware/gate"

// GateValidator adapts a TokenIssuer to the gate middleware's validator
// interface.
type GateValidator struct {
	tokens TokenIssuer
}

// NewGateValidator wraps the issuer for use by the gate middleware.
func NewGateValidator(tokens TokenIssuer) GateValidator {
	return GateValidator{tokens: tokens}
}

// Validate implements gate.TokenValidator.
func (g GateValidator) Validate(tokenString string) (gate.AuthClaims, error) {
	claims, err := g.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
