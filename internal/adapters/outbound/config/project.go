package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the BuildStream project configuration file.
const ProjectFile = "project.conf"

type projectConf struct {
	Name string `yaml:"name"`
}

// ProjectName reads the project name from project.conf in dir. It returns ""
// when there is no project.conf; BuildStream itself reports that case.
func ProjectName(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var conf projectConf
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return "", fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}
	return conf.Name, nil
}
