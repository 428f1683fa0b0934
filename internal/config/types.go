package config

// Config is the top-level containerbot configuration, corresponding to
// .containerbot.yml.
type Config struct {
	// Token is normally left empty in the file and supplied through the
	// environment; see ResolveToken.
	Token           string `yaml:"token,omitempty" koanf:"token"`
	ChannelID       string `yaml:"channel_id" koanf:"channel_id"`
	APIBaseURL      string `yaml:"api_base_url" koanf:"api_base_url"`
	GatewayURL      string `yaml:"gateway_url" koanf:"gateway_url"`
	CommandPrefix   string `yaml:"command_prefix" koanf:"command_prefix"`
	Intents         int    `yaml:"intents" koanf:"intents"`
	LogLevel        string `yaml:"log_level" koanf:"log_level"`
	PublicKey       string `yaml:"public_key" koanf:"public_key"`
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
