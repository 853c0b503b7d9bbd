package llm

import (
  "fmt"
  "strings"
  "sync"
)

const (
  ProviderOpenAI    = "openai"
  ProviderAnthropic = "anthropic"
)

// ModelRoute is a (provider, concrete model name) pair a requested model id
// resolves to.
type ModelRoute struct {
  Provider string
  Model    string
}

var defaultRoute = ModelRoute{Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"}

// modelRoutes is the static lookup table from requested model identifiers to
// provider/model pairs. Unknown identifiers fall back to defaultRoute rather
// than failing.
var modelRoutes = map[string]ModelRoute{
  "gpt3":   {Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"},
  "gpt4":   {Provider: ProviderOpenAI, Model: "gpt-4"},
  "gpt-4o": {Provider: ProviderOpenAI, Model: "gpt-4o"},
  "claude": {Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-20240620"},
  "llm":    {Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"},
}

func Route(modelID string) ModelRoute {
  if route, ok := modelRoutes[strings.ToLower(strings.TrimSpace(modelID))]; ok {
    return route
  }
  return defaultRoute
}

// Registry holds the process-scoped provider clients, constructed once at
// startup and injected into the bot service.
type Registry struct {
  mu        sync.RWMutex
  providers map[string]Provider
}

func NewRegistry() *Registry {
  return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(name string, p Provider) {
  name = strings.ToLower(strings.TrimSpace(name))
  r.mu.Lock()
  defer r.mu.Unlock()
  r.providers[name] = p
}

func (r *Registry) Get(name string) (Provider, error) {
  name = strings.ToLower(strings.TrimSpace(name))
  r.mu.RLock()
  p, ok := r.providers[name]
  r.mu.RUnlock()
  if !ok {
    return nil, fmt.Errorf("unknown llm provider: %s", name)
  }
  return p, nil
}
