package settings

import (
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

func ConfigShow(w io.Writer, v *viper.Viper) {
	fmt.Fprintf(w,
		"%-32s %-45s %-20s %-20s %s\n",
		"JSON KEY",
		"ENV VAR",
		"CURRENT",
		"DEFAULT",
		"DESCRIPTION",
	)

	for _, c := range Registry {
		current := v.Get(c.Key)
		if c.Key == DBSettingsPassword || c.Key == DBSettingsDSN {
			if s, _ := current.(string); s != "" {
				current = "********"
			}
		}
		fmt.Fprintf(w,
			"%-32s %-45s %-20v %-20v %s\n",
			c.Key,
			EnvVar(c.Key),
			current,
			c.Default,
			c.Description,
		)
	}
}

func ConfigEnv(w io.Writer) {
	fmt.Fprintf(w, "%-45s %s\n", "ENV VAR", "JSON KEY")

	for _, c := range Registry {
		fmt.Fprintf(w, "%-45s %s\n", EnvVar(c.Key), c.Key)
	}
}

func ConfigGet(w io.Writer, v *viper.Viper, key string) error {
	known := slices.ContainsFunc(Registry, func(c ConfigKey) bool {
		return c.Key == key
	})
	if !known {
		return fmt.Errorf("unknown config key: %s", key)
	}
	fmt.Fprintln(w, v.Get(key))
	return nil
}

// ConfigInit writes a settings file holding every default.
func ConfigInit(w io.Writer) error {
	v := viper.New()
	ApplyRegistryDefaults(v)

	b, err := json.MarshalIndent(v.AllSettings(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
