package mqttsource

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// clientOptions assembles the paho client options from the configuration.
// Auto-reconnect is disabled: a dropped connection is terminal for the
// source instance and restarting is the host's decision.
func (s *Source) clientOptions() (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.BrokerURL())
	opts.SetClientID(s.cfg.ClientIDPrefix + uuid.NewString()[:8])
	opts.SetUsername(s.cfg.Username)
	opts.SetPassword(s.cfg.Password)
	opts.SetKeepAlive(s.cfg.KeepAlive)
	opts.SetConnectTimeout(s.cfg.ConnectTimeout)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)
	// Ordered handler execution keeps event emission aligned with message
	// receipt order for the subscription.
	opts.SetOrderMatters(true)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.connectionLost(err)
	})

	if s.cfg.UseTLS {
		tlsConfig, err := s.cfg.tlsConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	return opts, nil
}

// tlsConfig loads the TLS material named in the configuration. Validate has
// already checked that the client cert and key come as a pair.
func (c *Config) tlsConfig() (*tls.Config, error) {
	out := &tls.Config{InsecureSkipVerify: c.InsecureSkipVerify}

	if c.CACertFile != "" {
		pem, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("ca_cert_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ca_cert_file %s contains no usable certificates", c.CACertFile)
		}
		out.RootCAs = pool
	}

	if c.ClientCertFile != "" {
		keyPair, err := tls.LoadX509KeyPair(c.ClientCertFile, c.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("client certificate: %w", err)
		}
		out.Certificates = []tls.Certificate{keyPair}
	}

	return out, nil
}
