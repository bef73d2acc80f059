package config

import "time"

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"chemdash"`
	Service  string `mapstructure:"SERVICE" default:"dashboard"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

// Remote is the compound service the dashboard is a client of.
type Remote struct {
	Addr           string        `mapstructure:"API_BASE_URL" default:"http://127.0.0.1:8000"`
	TokenPath      string        `mapstructure:"API_TOKEN_PATH" default:"/token"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT" default:"10s"`
}

type RPC struct {
	PubChem RPCPubChem `mapstructure:",squash"`
}

type RPCPubChem struct {
	Addr    string        `mapstructure:"PUBCHEM_ADDR" default:"https://pubchem.ncbi.nlm.nih.gov"`
	Timeout time.Duration `mapstructure:"PUBCHEM_TIMEOUT" default:"10s"`
}

type Redis struct {
	Enable   bool   `mapstructure:"REDIS_ENABLE" default:"false"`
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Session struct {
	CookieName string        `mapstructure:"SESSION_COOKIE" default:"chemdash_session"`
	TTL        time.Duration `mapstructure:"SESSION_TTL" default:"24h"`
}

type Notify struct {
	Duration time.Duration `mapstructure:"NOTIFY_DURATION" default:"3s"`
	PoolSize int           `mapstructure:"NOTIFY_POOL_SIZE" default:"64"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}
