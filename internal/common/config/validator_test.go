package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *APIServerConfig {
	c := &APIServerConfig{
		Database: DatabaseConfig{Type: "sqlite", DBName: "/tmp/x.db"},
		JWT:      JWTConfig{SecretKey: strings.Repeat("k", 32)},
	}
	c.ApplyDefaults()
	return c
}

func TestValidationError_ErrorFormats(t *testing.T) {
	e := &ValidationError{Message: "oops", Problems: []string{"a missing", "b missing"}}
	s := e.Error()
	assert.Contains(t, s, "oops")
	assert.Contains(t, s, "--> a missing")
	assert.Contains(t, s, "--> b missing")
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	c := validConfig()
	c.Database.Type = "oracle"
	c.JWT.SecretKey = "short"
	c.Documents.Store = "s3"
	c.Notifier.SMS.Enabled = true

	err := c.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 5)

	msg := ve.Error()
	assert.Contains(t, msg, "unsupported database type \"oracle\"")
	assert.Contains(t, msg, "jwt.secret_key")
	assert.Contains(t, msg, "documents.s3.bucket")
	assert.Contains(t, msg, "documents.s3.region")
	assert.Contains(t, msg, "notifier.sms")
}

func TestValidate_PostgresNeedsHost(t *testing.T) {
	c := validConfig()
	c.Database = DatabaseConfig{Type: "postgres", DBName: "d"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host is required for postgres")
}
