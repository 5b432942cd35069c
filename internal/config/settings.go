package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// EnvPrefix prefixes every environment variable read by Settings.
const EnvPrefix = "BLITZ"

// Settings holds how to reach and authenticate with the remote service.
type Settings struct {
	User         string
	APIKey       string
	Host         string
	Port         int
	Scheme       string
	Timeout      time.Duration
	PollInterval time.Duration
	Verbose      bool
	NoColor      bool
}

// NewViper returns a viper instance with defaults set and BLITZ_* environment
// variables bound. configFile is read when non-empty.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("host", blitz.DefaultHost)
	v.SetDefault("port", blitz.DefaultPort)
	v.SetDefault("scheme", blitz.DefaultScheme)
	v.SetDefault("timeout", blitz.DefaultTimeout)
	v.SetDefault("poll-interval", blitz.DefaultPollInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// BindFlags binds every flag of fs whose name is a Settings key, so flags set
// on the command line win over the environment and the config file.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, name := range []string{"user", "api-key", "host", "port", "scheme", "timeout", "poll-interval", "verbose", "no-color"} {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadSettings decodes v into Settings and validates the result.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		User:         v.GetString("user"),
		APIKey:       v.GetString("api-key"),
		Host:         v.GetString("host"),
		Port:         v.GetInt("port"),
		Scheme:       v.GetString("scheme"),
		Timeout:      v.GetDuration("timeout"),
		PollInterval: v.GetDuration("poll-interval"),
		Verbose:      v.GetBool("verbose"),
		NoColor:      v.GetBool("no-color"),
	}

	if errs := ValidateSettings(s); len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

// ClientOptions converts s into options for blitz.NewClient.
func (s *Settings) ClientOptions() []blitz.ClientOption {
	return []blitz.ClientOption{
		blitz.WithHost(s.Host),
		blitz.WithPort(s.Port),
		blitz.WithScheme(s.Scheme),
		blitz.WithTimeout(s.Timeout),
	}
}
