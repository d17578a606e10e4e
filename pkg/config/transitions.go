package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadTransitionRules lee el archivo de política de transiciones (YAML, JSON o TOML según
// la extensión). Formato:
//
//	transitions:
//	  invoice:
//	    pending: [paid, overdue, cancelled]
//	    overdue: [paid, cancelled]
//
// Un path vacío devuelve nil: sin reglas.
func LoadTransitionRules(path string) (map[string]map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer política de transiciones: %w", err)
	}
	var doc struct {
		Transitions map[string]map[string][]string `mapstructure:"transitions"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decodificar política de transiciones: %w", err)
	}
	return doc.Transitions, nil
}
