package config

const (
	defaultBackendURL    = "http://localhost:54321"
	defaultFunctionsPath = "/functions/v1"
	defaultResearchPath  = "/functions/v1/research"

	defaultAPIListen = ":8081"

	defaultEventsTopic = "quire.research"

	defaultRenderWidth = 80
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backend: BackendConfig{
			URL:           defaultBackendURL,
			FunctionsPath: defaultFunctionsPath,
			ResearchPath:  defaultResearchPath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Render: RenderConfig{
			Width: defaultRenderWidth,
		},
	}
}
