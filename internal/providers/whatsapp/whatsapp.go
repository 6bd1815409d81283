// Package whatsapp implementa el proveedor WhatsApp Business sobre Facebook Login.
package whatsapp

import (
	"context"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/providers"
	"github.com/dropDatabas3/socialbridge/internal/providers/facebook"
)

// Descriptor: mismos endpoints que Facebook, scopes de WhatsApp Business.
func Descriptor(version string) providers.Descriptor {
	d := facebook.Descriptor(version)
	d.Name = config.ProviderWhatsApp
	d.DefaultScopes = []string{"whatsapp_business_management", "whatsapp_business_messaging", "business_management"}
	return d
}

func New(pc config.ProviderConfig, opts providers.Options) *facebook.Graph {
	return facebook.NewGraph(Descriptor(pc.APIVersion), pc, opts, metadata)
}

// metadata: business → WABA → primer número de teléfono.
func metadata(ctx context.Context, g *facebook.Graph, accessToken string) (map[string]string, error) {
	businessID, err := g.FirstID(ctx, accessToken, "/me/businesses")
	if err != nil {
		return nil, err
	}
	out := map[string]string{"business_id": businessID}

	wabaID, err := g.FirstID(ctx, accessToken, "/"+businessID+"/owned_whatsapp_business_accounts")
	if err != nil {
		return out, nil
	}
	out["waba_id"] = wabaID

	if phoneID, err := g.FirstID(ctx, accessToken, "/"+wabaID+"/phone_numbers"); err == nil {
		out["phone_number_id"] = phoneID
	}
	return out, nil
}
