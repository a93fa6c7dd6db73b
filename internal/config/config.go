package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/caltha/wanderlust/internal/domain"
)

type Config struct {
	Site   Site   `yaml:"site"`
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Site struct {
	Title   string `yaml:"title"`
	Tagline string `yaml:"tagline"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	DataPath      string `yaml:"dataPath"`    // sqlite file for the local snapshot
	PostgresDsn   string `yaml:"postgresDsn"` // overrides DataPath when set
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	RemoteKey     string `yaml:"remoteKey"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	// Secret is the shared HMAC secret of the external identity
	// provider. Empty disables the admin surface entirely.
	Secret   string `yaml:"secret"`
	Audience string `yaml:"audience"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Site.Title == "" {
		config.Site.Title = "Wanderlust Chronicles"
	}
	if config.Site.Tagline == "" {
		config.Site.Tagline = "Documenting our journey through the world's most beautiful landscapes."
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Server.DataPath == "" {
		config.Server.DataPath = "wanderlust.db"
	}
	if config.Server.RemoteKey == "" {
		config.Server.RemoteKey = domain.DefaultRemoteKey
	}

	return config, nil
}
