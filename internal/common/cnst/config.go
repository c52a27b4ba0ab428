package cnst

const (
	ApiServerYaml = "apiserver.yaml"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMySQL    = "mysql"
)

// Document store backends
const (
	DocumentStoreDisk = "disk"
	DocumentStoreS3   = "s3"
)
