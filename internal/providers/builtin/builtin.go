// Package builtin arma el registry con los proveedores habilitados en la config.
package builtin

import (
	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/providers"
	"github.com/dropDatabas3/socialbridge/internal/providers/facebook"
	"github.com/dropDatabas3/socialbridge/internal/providers/gmail"
	"github.com/dropDatabas3/socialbridge/internal/providers/instagram"
	"github.com/dropDatabas3/socialbridge/internal/providers/tiktok"
	"github.com/dropDatabas3/socialbridge/internal/providers/whatsapp"
)

// Build registra cada proveedor habilitado. Los deshabilitados quedan
// "conocidos" y Get devuelve ErrProviderDisabled.
func Build(cfg *config.Config, opts providers.Options) *providers.Registry {
	reg := providers.NewRegistry(config.ProviderNames...)
	for _, name := range cfg.EnabledProviders() {
		pc, _ := cfg.Provider(name)
		switch name {
		case config.ProviderFacebook:
			reg.Register(facebook.New(pc, opts))
		case config.ProviderInstagram:
			reg.Register(instagram.New(pc, opts))
		case config.ProviderTikTok:
			reg.Register(tiktok.New(pc, opts))
		case config.ProviderGmail:
			reg.Register(gmail.New(pc, opts))
		case config.ProviderWhatsApp:
			reg.Register(whatsapp.New(pc, opts))
		}
	}
	return reg
}
