package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/repository/objectstore"
	"github.com/tanoush/storefront/internal/service/auth/password"
)

const (
	defaultListenAddr   = "localhost:3080"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultAccessTTL    = time.Minute
	defaultRefreshTTL   = 7 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the storefront service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Environment
	Environment string

	// Keys to sign access and refresh tokens. Both required and must differ
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	CookieSecure         bool
	LogoutRevokesRefresh bool
	BcryptCost           int

	// Catalog filter options are cached in redis when set
	RedisAddr string

	// Expose prometheus metrics on /metrics
	Metrics bool

	// Uploaded images go to S3 when bucket is set
	S3 objectstore.Config
}

func NewConfig() *Config {
	return &Config{
		LogLevel:             defaultLoggingLevel,
		ListenAddr:           defaultListenAddr,
		Environment:          defaultEnvironment,
		AccessTTL:            defaultAccessTTL,
		RefreshTTL:           defaultRefreshTTL,
		LogoutRevokesRefresh: true,
		BcryptCost:           password.DefaultCost,
		Metrics:              true,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := parseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			i, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = i
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":              setString(&c.ListenAddr),
		"DATABASE_URI":             setString(&c.DatabaseDSN),
		"LOG_LEVEL":                setString(&c.LogLevel),
		"ENVIRONMENT":              setString(&c.Environment),
		"JWT_SECRET":               setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET":     setString(&c.RefreshSecret),
		"JWT_EXPIRATION":           setDuration(&c.AccessTTL),
		"REFRESH_TOKEN_EXPIRATION": setDuration(&c.RefreshTTL),
		"COOKIE_SECURE":            setBool(&c.CookieSecure),
		"LOGOUT_REVOKES_REFRESH":   setBool(&c.LogoutRevokesRefresh),
		"BCRYPT_COST":              setInt(&c.BcryptCost),
		"REDIS_ADDR":               setString(&c.RedisAddr),
		"METRICS":                  setBool(&c.Metrics),
		"S3_ENDPOINT":              setString(&c.S3.Endpoint),
		"S3_REGION":                setString(&c.S3.Region),
		"S3_BUCKET":                setString(&c.S3.Bucket),
		"S3_ACCESS_KEY":            setString(&c.S3.AccessKey),
		"S3_SECRET_KEY":            setString(&c.S3.SecretKey),
		"S3_PUBLIC_URL":            setString(&c.S3.PublicURL),
		"S3_USE_PATH_STYLE":        setBool(&c.S3.UsePathStyle),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("storefront", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.AccessSecret, "jwt-secret", c.AccessSecret, "Access token signing key")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token signing key")
	fs.Var((*durationValue)(&c.AccessTTL), "jwt-expiration", "Access token lifetime (e.g. 1m, 15m)")
	fs.Var((*durationValue)(&c.RefreshTTL), "refresh-expiration", "Refresh token lifetime (e.g. 7d, 12h)")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Send session cookies over https only")
	fs.BoolVar(&c.LogoutRevokesRefresh, "logout-revokes-refresh", c.LogoutRevokesRefresh, "Forget refresh token on logout")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "Password hashing cost")
	fs.StringVarP(&c.RedisAddr, "redis", "r", c.RedisAddr, "Redis address for catalog cache")
	fs.BoolVar(&c.Metrics, "metrics", c.Metrics, "Expose prometheus metrics")

	return fs.Parse(args)
}

// Validate fails on settings the service can't run safely with
func (c *Config) Validate() error {
	var errs []error

	if c.AccessSecret == "" || c.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must be set"))
	} else if c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_URI must be set"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}

	return errors.Join(errs...)
}

// Go duration or whole days with 'd' suffix: 7d
func parseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// durationValue makes parseDuration usable as pflag value
type durationValue time.Duration

func (d *durationValue) Set(s string) error {
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

func (d *durationValue) String() string {
	return time.Duration(*d).String()
}

func (d *durationValue) Type() string {
	return "duration"
}
