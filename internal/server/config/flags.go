package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/gophidentity/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     metrics bind address
//	-d string     PostgreSQL DSN
//	-l string     log level
//	-i int        PBKDF2 iterations for new hashes
//	-s string     token HMAC secret key
//	-t duration   user token lifespan (e.g., "24h")
//	-f int        max failed access attempts before lockout
//	-k duration   lockout time span (e.g., "5m")
//	-r string     admin role name
//	-u string     admin email
//	-p string     admin password
//
// Only these flags are parsed; args are filtered with flagx.FilterArgs so
// -c/-config and flags owned by other components do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-d", "-l", "-i", "-s", "-t", "-f", "-k", "-r", "-u", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.PasswordHashIterations, "i", config.PasswordHashIterations, "PBKDF2 iterations")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.UserTokenLifespan, "t", config.UserTokenLifespan, "user token lifespan")
	fs.IntVar(&config.MaxFailedAccessAttempts, "f", config.MaxFailedAccessAttempts, "max failed access attempts")
	fs.DurationVar(&config.DefaultLockoutTimeSpan, "k", config.DefaultLockoutTimeSpan, "lockout time span")
	fs.StringVar(&config.AdminRoleName, "r", config.AdminRoleName, "admin role name")
	fs.StringVar(&config.AdminEmail, "u", config.AdminEmail, "admin email")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "admin password")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
