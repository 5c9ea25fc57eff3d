package auth

import (
	"time"

	"go.uber.org/fx"

	"github.com/tasklight/tasklight-core/pkg/config"
)

// ProvideAuthentication builds the middleware from process configuration.
// Tokens are the ones the identity issuer signs, so the same secret and
// issuer/audience pair validate them.
func ProvideAuthentication(cfg *config.Config) *Middleware {
	return &Middleware{
		secret:    []byte(cfg.TokenSecret),
		issuer:    cfg.TokenIssuer,
		audience:  cfg.TokenAudience,
		adminRole: cfg.AdminRole,
		leeway:    60 * time.Second,
		devBypass: cfg.DevBypass,
	}
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
