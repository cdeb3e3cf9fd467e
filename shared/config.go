package shared

import (
	"encoding/json"
	"github.com/tailscale/hujson"
	"log"
	"os"
)

const (
	configVarName  = "CONFIG"                      // If set, will load config.json from this path and not from devConfigPath
	secretsVarName = "SECRETS"                     // If set, will load secrets.json from this path and not from devSecretsPath
	devConfigPath  = "dev/config.dev.jsonc"  // Path to config.json in development environment
	devSecretsPath = "dev/secrets.dev.jsonc" // Path to secrets.json in development environment
)

const defaultStateExpirySec = 600

type Config struct {
	Secrets      Secrets       `json:"-"`
	LogFile      string        `json:"log_file"`
	LogLevel     string        `json:"log_level"`
	ServicePort  uint          `json:"service_port"`
	Host         string        `json:"host"`
	Instance     InstanceInfo  `json:"instance"`
	OwnerLogin   string        `json:"owner_login"`
	EnableWrites bool          `json:"enable_writes"`
	OAuth        OAuthConfig   `json:"oauth"`
	Storage      StorageConfig `json:"storage"`
}

type InstanceInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// OAuthConfig describes the identity bridge.
// ClientId and ClientSecret are the fixed, publicly documented pair echoed
// back to every registering app; they authenticate nobody. Only the owner's
// identity, asserted by the external provider, matters.
type OAuthConfig struct {
	ClientId       string       `json:"client_id"`
	ClientSecret   string       `json:"client_secret"`
	StateExpirySec int64        `json:"state_expiry_sec"`
	WrapCode       bool         `json:"wrap_code"`
	Github         GithubConfig `json:"github"`
}

type GithubConfig struct {
	AuthorizeUrl string `json:"authorize_url"`
	TokenUrl     string `json:"token_url"`
	ApiBase      string `json:"api_base"`
	Scope        string `json:"scope"`
}

type StorageConfig struct {
	Kind        string `json:"kind"` // "blob" or "file"
	Endpoint    string `json:"endpoint"`
	UseSSL      bool   `json:"use_ssl"`
	Bucket      string `json:"bucket"`
	SnapshotKey string `json:"snapshot_key"`
	LocalDir    string `json:"local_dir"`
}

type Secrets struct {
	StateSecret        string `json:"state_secret"`
	GithubClientId     string `json:"github_client_id"`
	GithubClientSecret string `json:"github_client_secret"`
	MetricsAuth        string `json:"metrics_auth"`
	StorageAccessKey   string `json:"storage_access_key"`
	StorageSecretKey   string `json:"storage_secret_key"`
}

func LoadConfig() *Config {

	// Where are our config and secrets files?
	cfgPath := os.Getenv(configVarName)
	if len(cfgPath) == 0 {
		cfgPath = devConfigPath
	}
	secretsPath := os.Getenv(secretsVarName)
	if len(secretsPath) == 0 {
		secretsPath = devSecretsPath
	}

	// Read config file
	var config Config
	mustDeserializeFile(cfgPath, &config)
	// Read secrets member from secrets file
	mustDeserializeFile(secretsPath, &config.Secrets)

	applyDefaults(&config)
	return &config
}

func applyDefaults(config *Config) {
	if config.OAuth.StateExpirySec == 0 {
		config.OAuth.StateExpirySec = defaultStateExpirySec
	}
	if config.OAuth.Github.AuthorizeUrl == "" {
		config.OAuth.Github.AuthorizeUrl = "https://github.com/login/oauth/authorize"
	}
	if config.OAuth.Github.TokenUrl == "" {
		config.OAuth.Github.TokenUrl = "https://github.com/login/oauth/access_token"
	}
	if config.OAuth.Github.ApiBase == "" {
		config.OAuth.Github.ApiBase = "https://api.github.com"
	}
	if config.OAuth.Github.Scope == "" {
		config.OAuth.Github.Scope = "read:user"
	}
	if config.Storage.SnapshotKey == "" {
		config.Storage.SnapshotKey = "snapshot.json"
	}
}

func mustDeserializeFile[T any](fileName string, obj *T) {
	var err error
	var cfgJson []byte
	cfgJson, err = os.ReadFile(fileName)
	if err != nil {
		log.Fatal(err)
	}
	// JSONC => JSON
	cfgJson, err = standardizeJSON(cfgJson)
	if err != nil {
		log.Fatal(err)
	}
	// Parse
	if err := json.Unmarshal(cfgJson, obj); err != nil {
		log.Fatal(err)
	}
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}
