package settings

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// NewViper returns a viper instance with defaults, environment overrides and,
// when jsonStr is not empty, the given JSON config applied.
func NewViper(jsonStr string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(strings.ToLower(envPrefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	ApplyRegistryDefaults(v)

	if jsonStr != "" {
		if err := v.ReadConfig(strings.NewReader(jsonStr)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func ReadConfig(jsonStr string) (*Settings, error) {
	v, err := NewViper(jsonStr)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Settings, error) {
	dbTypeToUse, err := ParseDBType(v.GetString(DBType))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		IP:            v.GetString(IP),
		Port:          v.GetString(Port),
		LogLevel:      v.GetString(Loglevel),
		EnableMetrics: v.GetBool(EnableMetrics),
		DBType:        dbTypeToUse,
		DBSettings: &DBSettings{
			Host:     v.GetString(DBSettingsHost),
			Port:     v.GetString(DBSettingsPort),
			Database: v.GetString(DBSettingsDatabase),
			User:     v.GetString(DBSettingsUser),
			Password: v.GetString(DBSettingsPassword),
			SSLMode:  v.GetString(DBSettingsSSLMode),
			DSN:      v.GetString(DBSettingsDSN),
			Filename: v.GetString(DBSettingsFilename),
		},
		Revisions: RevisionSettings{
			KeyframeInterval:  v.GetInt(RevisionsKeyframeInterval),
			MaxCreateAttempts: v.GetInt(RevisionsMaxCreateAttempts),
			ActualPolicy:      v.GetString(RevisionsActualPolicy),
		},
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}
