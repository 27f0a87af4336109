package configmgr

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const defaultConfigBaseName = "database"

// LoadSettingsForEnv reads database-<ENV>.yaml (or database.yaml locally)
// from the working directory.
func LoadSettingsForEnv() (*DatabaseSettings, error) {
	return ReadSettings(getEnvPropertyFileName(defaultConfigBaseName))
}

// LoadSettingsFromPathForEnv - search the database-<ENV> properties in the given search path (for ex. "./config" )
func LoadSettingsFromPathForEnv(searchPath string) (*DatabaseSettings, error) {
	if searchPath == "" {
		return LoadSettingsForEnv()
	}

	searchPath = strings.TrimSuffix(searchPath, "/")

	return ReadSettings(getEnvPropertyFileName(fmt.Sprintf("%s/%s", searchPath, defaultConfigBaseName)))
}

// ReadSettings reads the database configuration from the file and environment variables.
// Set environment variables override the file values.
func ReadSettings(configFilePath string) (*DatabaseSettings, error) {
	log.Println("config filepath: ", configFilePath)

	viper.SetConfigFile(configFilePath) // Specify the file to read
	viper.SetConfigType("yaml")         // Specify the config file type (yaml)
	viper.AutomaticEnv()                // Enable automatic environment variable binding

	// Replace dots in keys with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Attempt to read the configuration file
	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Reading configuration from config file: %s\nSet environment variables will OVERRIDE these values, as the environment takes precedent.", configFilePath)
	} else {
		log.Println("No configuration file found, reading configuration from environment variables.")
	}

	settings := &DatabaseSettings{}

	// Unmarshal the configuration into the settings struct
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.Wrap(err, "unable to decode into settings struct")
	}

	return settings, nil
}

func getEnvPropertyFileName(baseFileName string) string {
	env := strings.ToUpper(os.Getenv("ENVIRONMENT"))
	if !checkIfLocalEnv(env) {
		return fmt.Sprintf("%s-%s.yaml", baseFileName, strings.ToLower(env))
	}

	return fmt.Sprintf("%s.yaml", baseFileName)
}

func checkIfLocalEnv(env string) bool {
	if env == strings.ToUpper("DEV") || env == strings.ToUpper("STAGE") || env == strings.ToUpper("PROD") {
		return false
	}

	return true
}
