package models

// SystemConfig is the platform configuration shown on the configuration
// screen. It lives in memory for the lifetime of the process.
type SystemConfig struct {
	General      GeneralSettings     `json:"general"`
	Features     FeatureSettings     `json:"features"`
	Integrations IntegrationSettings `json:"integrations"`
	Security     SecuritySettings    `json:"security"`
	Database     DatabaseSettings    `json:"database"`
}

// GeneralSettings holds platform-wide display settings
type GeneralSettings struct {
	PlatformName string `json:"platform_name"`
	SupportEmail string `json:"support_email"`
	Timezone     string `json:"timezone"`
	Language     string `json:"language"`
}

// FeatureSettings toggles optional platform features
type FeatureSettings struct {
	AuditLogs          bool `json:"audit_logs"`
	AdvancedReports    bool `json:"advanced_reports"`
	APIAccess          bool `json:"api_access"`
	RealTimeMonitoring bool `json:"real_time_monitoring"`
}

// IntegrationSettings lists external integrations. Secrets are never
// part of this view.
type IntegrationSettings struct {
	Email    Integration `json:"email"`
	Siigo    Integration `json:"siigo"`
	Calendar Integration `json:"calendar"`
}

// Integration is the state of one external integration
type Integration struct {
	Enabled    bool   `json:"enabled"`
	Configured bool   `json:"configured"`
	Endpoint   string `json:"endpoint,omitempty"`
}

// SecuritySettings holds authentication policy
type SecuritySettings struct {
	TwoFactorAuth       bool           `json:"two_factor_auth"`
	IPAllowlist         bool           `json:"ip_allowlist"`
	SessionTimeoutHours int            `json:"session_timeout_hours"`
	PasswordPolicy      PasswordPolicy `json:"password_policy"`
}

// PasswordPolicy constrains user passwords
type PasswordPolicy struct {
	MinLength           int  `json:"min_length"`
	RequireUppercase    bool `json:"require_uppercase"`
	RequireNumbers      bool `json:"require_numbers"`
	RequireSpecialChars bool `json:"require_special_chars"`
}

// DatabaseSettings holds backup policy
type DatabaseSettings struct {
	BackupEnabled   bool   `json:"backup_enabled"`
	BackupFrequency string `json:"backup_frequency"`
	RetentionDays   int    `json:"retention_days"`
}

// DefaultSystemConfig returns the configuration the platform ships with
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		General: GeneralSettings{
			PlatformName: "Planifika",
			SupportEmail: "soporte@drimsoft.com",
			Timezone:     "America/Bogota",
			Language:     "es",
		},
		Features: FeatureSettings{
			AuditLogs:          true,
			AdvancedReports:    true,
			APIAccess:          false,
			RealTimeMonitoring: true,
		},
		Integrations: IntegrationSettings{
			Email:    Integration{Enabled: true, Configured: true, Endpoint: "smtp.drimsoft.com:587"},
			Siigo:    Integration{Enabled: false, Configured: false},
			Calendar: Integration{Enabled: true, Configured: false},
		},
		Security: SecuritySettings{
			TwoFactorAuth:       true,
			IPAllowlist:         false,
			SessionTimeoutHours: 8,
			PasswordPolicy: PasswordPolicy{
				MinLength:           12,
				RequireUppercase:    true,
				RequireNumbers:      true,
				RequireSpecialChars: true,
			},
		},
		Database: DatabaseSettings{
			BackupEnabled:   true,
			BackupFrequency: "daily",
			RetentionDays:   30,
		},
	}
}
