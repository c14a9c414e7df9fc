package summarize

import "os"

// Provider describes a hosted chat completions service.
type Provider struct {
	Name         string
	Display      string
	BaseURL      string
	EnvVar       string
	DefaultModel string
}

// Providers lists the supported hosted summary backends.
var Providers = []Provider{
	{Name: "xai", Display: "xAI (Grok)", BaseURL: "https://api.x.ai/v1", EnvVar: "XAI_API_KEY", DefaultModel: "grok-3"},
	{Name: "openai", Display: "OpenAI", BaseURL: "https://api.openai.com/v1", EnvVar: "OPENAI_API_KEY", DefaultModel: "gpt-4o"},
	{Name: "anthropic", Display: "Anthropic", BaseURL: "https://api.anthropic.com/v1", EnvVar: "ANTHROPIC_API_KEY", DefaultModel: "claude-sonnet-4-6"},
}

// FindProvider looks up a provider by name. It returns nil for an
// unknown name.
func FindProvider(name string) *Provider {
	for i := range Providers {
		if Providers[i].Name == name {
			return &Providers[i]
		}
	}
	return nil
}

// ResolveAPIKey returns the provider's environment key when set,
// otherwise the fallback from config or flags.
func (p *Provider) ResolveAPIKey(fallback string) string {
	if val := os.Getenv(p.EnvVar); val != "" {
		return val
	}
	return fallback
}

// ChatCompletionsURL is the endpoint a Client should post to for this
// provider.
func (p *Provider) ChatCompletionsURL() string {
	return p.BaseURL + "/chat/completions"
}
