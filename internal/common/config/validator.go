package config

import (
	"fmt"
	"strings"

	"github.com/harambee/studentliving/internal/common/cnst"
)

// ValidationError lists every problem found in a configuration file
type ValidationError struct {
	Message  string
	Problems []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\n\n")
	for _, p := range e.Problems {
		sb.WriteString("--> ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate checks the configuration and reports all problems at once
func (c *APIServerConfig) Validate() error {
	var problems []string

	switch c.Database.Type {
	case cnst.DatabaseSQLite:
		if c.Database.DBName == "" {
			problems = append(problems, "database.dbname is required for sqlite")
		}
	case cnst.DatabasePostgres, cnst.DatabaseMySQL:
		if c.Database.Host == "" {
			problems = append(problems, fmt.Sprintf("database.host is required for %s", c.Database.Type))
		}
		if c.Database.DBName == "" {
			problems = append(problems, fmt.Sprintf("database.dbname is required for %s", c.Database.Type))
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported database type %q", c.Database.Type))
	}

	if len(c.JWT.SecretKey) < 32 {
		problems = append(problems, "jwt.secret_key must be at least 32 characters")
	}

	switch c.Documents.Store {
	case cnst.DocumentStoreDisk:
		if c.Documents.Disk.Path == "" {
			problems = append(problems, "documents.disk.path is required")
		}
	case cnst.DocumentStoreS3:
		if c.Documents.S3.Bucket == "" {
			problems = append(problems, "documents.s3.bucket is required")
		}
		if c.Documents.S3.Region == "" {
			problems = append(problems, "documents.s3.region is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported documents store %q", c.Documents.Store))
	}

	if e := c.Notifier.Email; e.Enabled && (e.Host == "" || e.Port == 0 || e.From == "") {
		problems = append(problems, "notifier.email requires host, port and from when enabled")
	}
	if s := c.Notifier.SMS; s.Enabled && (s.BaseURL == "" || s.AccountSID == "" || s.From == "") {
		problems = append(problems, "notifier.sms requires base_url, account_sid and from when enabled")
	}
	if r := c.Notifier.Redis; r.Enabled && r.Addr == "" {
		problems = append(problems, "notifier.redis.addr is required when enabled")
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid configuration", Problems: problems}
}
