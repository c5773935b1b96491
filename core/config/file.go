// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ApplyFile reads a TOML file of environment settings, for example
//
//	AUTH0_DOMAIN = "tenant.eu.auth0.com"
//	API_AUDIENCE = "coffee"
//	PORT = 5000
//
// Keys are the environment variable names, case insensitive. Variables which
// are already set in the environment win over the file. An empty path is a
// no-op.
func ApplyFile(path string) error {
	if path == "" {
		return nil
	}
	var values map[string]interface{}
	if _, err := toml.DecodeFile(path, &values); err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	for key, value := range values {
		switch value.(type) {
		case map[string]interface{}, []interface{}, []map[string]interface{}:
			return fmt.Errorf("config file %s: %s must be a plain value", path, key)
		}
		key = strings.ToUpper(key)
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
