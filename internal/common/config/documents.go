package config

type (
	// DocumentsConfig selects where rendered lease and invoice documents are kept
	DocumentsConfig struct {
		Store       string            `yaml:"store"` // disk or s3
		TemplateDir string            `yaml:"template_dir"`
		Disk        DiskStorageConfig `yaml:"disk"`
		S3          S3StorageConfig   `yaml:"s3"`
	}

	DiskStorageConfig struct {
		Path string `yaml:"path"`
	}

	S3StorageConfig struct {
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region"`
		Endpoint        string `yaml:"endpoint"`
		Prefix          string `yaml:"prefix"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		UsePathStyle    bool   `yaml:"use_path_style"`
	}
)
