package config

import "fmt"

// Validate 校验配置（Load 会自动调用）
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for badger backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for redis backend")
		}
	default:
		return fmt.Errorf("storage.backend must be badger or redis (got %q)", c.Storage.Backend)
	}

	if err := c.SOS.validate(); err != nil {
		return fmt.Errorf("sos: %w", err)
	}

	switch c.Dispatch.Launcher {
	case "log":
	case "mqtt":
		if !c.MQTT.Enabled() {
			return fmt.Errorf("dispatch.launcher=mqtt requires mqtt.broker")
		}
	case "webhook":
		if c.Dispatch.WebhookURL == "" {
			return fmt.Errorf("dispatch.launcher=webhook requires dispatch.webhook_url")
		}
	default:
		return fmt.Errorf("dispatch.launcher must be log, mqtt or webhook (got %q)", c.Dispatch.Launcher)
	}
	if c.Dispatch.Platform != "android" && c.Dispatch.Platform != "ios" {
		return fmt.Errorf("dispatch.platform must be android or ios (got %q)", c.Dispatch.Platform)
	}

	switch c.Location.Provider {
	case "none", "static":
	case "http":
		if c.Location.BaseURL == "" {
			return fmt.Errorf("location.provider=http requires location.base_url")
		}
	default:
		return fmt.Errorf("location.provider must be http, static or none (got %q)", c.Location.Provider)
	}

	return nil
}

func (s *SOSConfig) validate() error {
	if s.PinLength < 4 || s.PinLength > 12 {
		return fmt.Errorf("pin_length must be between 4 and 12 (got %d)", s.PinLength)
	}
	return nil
}
