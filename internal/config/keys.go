package config

import "os"

// APIKeySource represents where a credential comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of a credential.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of all configured credentials.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("DeepSeek API Key", cfg.LLM.APIKey, "VIGIA_LLM_API_KEY"),
		checkKey("SMTP Username", cfg.Mail.Username, "VIGIA_MAIL_USERNAME"),
		checkKey("SMTP Password", cfg.Mail.Password, "VIGIA_MAIL_PASSWORD"),
	}
}

// checkKey checks if a credential is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks a credential for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
