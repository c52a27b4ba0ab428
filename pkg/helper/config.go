package helper

import (
	"os"
	"path/filepath"
)

// systemCfgDir holds the configuration of a packaged install
const systemCfgDir = "/etc/studentliving"

// GetCfgPath locates the named config file for the API server. An absolute
// name is used as given. A relative name is looked up in the working
// directory, then in its configs/ folder; when neither has it the path under
// /etc/studentliving is returned whether or not the file exists there.
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	if p := findInWorkDir(filename); p != "" {
		return p
	}
	return filepath.Join(systemCfgDir, filename)
}

func findInWorkDir(filename string) string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return ""
	}
	for _, dir := range []string{wd, filepath.Join(wd, "configs")} {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs
		}
	}
	return ""
}
