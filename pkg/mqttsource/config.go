package mqttsource

import (
	"fmt"
	"time"
)

// Config holds all necessary configuration for one MQTT event source. It is
// supplied once at startup and never mutated by the source.
type Config struct {
	// Host is the broker hostname or IP address.
	Host string `yaml:"host"`
	// Port is the broker TCP port, 1-65535.
	Port int `yaml:"port"`
	// Topic is the single topic this source subscribes to.
	Topic string `yaml:"topic"`
	// ClientIDPrefix is prefixed to a generated unique suffix to form the
	// MQTT client ID. Most brokers require client IDs to be unique.
	ClientIDPrefix string `yaml:"client_id_prefix"`
	// Username for authenticating with the broker. Optional.
	Username string `yaml:"username"`
	// Password for authenticating with the broker. Optional.
	Password string `yaml:"password"`
	// QoS is the subscription quality of service level, 0-2.
	QoS byte `yaml:"qos"`
	// KeepAlive is the interval between keep-alive pings to the broker.
	KeepAlive time.Duration `yaml:"keep_alive"`
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ChannelCapacity is the buffer size of the emitted event channel. When
	// the buffer is full the source blocks rather than drop messages.
	ChannelCapacity int `yaml:"channel_capacity"`

	// TLS settings are passed through to the transport untouched.
	UseTLS             bool   `yaml:"use_tls"`
	CACertFile         string `yaml:"ca_cert_file"`
	ClientCertFile     string `yaml:"client_cert_file"`
	ClientKeyFile      string `yaml:"client_key_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

const (
	defaultClientIDPrefix  = "eda-bridge-"
	defaultKeepAlive       = 60 * time.Second
	defaultConnectTimeout  = 10 * time.Second
	defaultChannelCapacity = 100
)

// Validate checks the configuration before any connection attempt, naming
// the first invalid field. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidConfig)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d outside valid TCP range 1-65535", ErrInvalidConfig, c.Port)
	}
	if c.Topic == "" {
		return fmt.Errorf("%w: topic must not be empty", ErrInvalidConfig)
	}
	if c.QoS > 2 {
		return fmt.Errorf("%w: qos %d outside valid range 0-2", ErrInvalidConfig, c.QoS)
	}
	if (c.ClientCertFile == "") != (c.ClientKeyFile == "") {
		return fmt.Errorf("%w: client_cert_file and client_key_file must be set together", ErrInvalidConfig)
	}
	return nil
}

// applyDefaults fills zero-valued operational settings.
func (c *Config) applyDefaults() {
	if c.ClientIDPrefix == "" {
		c.ClientIDPrefix = defaultClientIDPrefix
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = defaultKeepAlive
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ChannelCapacity == 0 {
		c.ChannelCapacity = defaultChannelCapacity
	}
}

// BrokerURL renders the paho broker URL for this configuration.
func (c *Config) BrokerURL() string {
	scheme := "tcp"
	if c.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}
