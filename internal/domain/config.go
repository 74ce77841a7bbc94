package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

// DefaultInvalidLicenses are scanner values that mean "nothing detected".
var DefaultInvalidLicenses = []string{
	"",
	"UNKNOWN",
	"GENERATED FILE",
	"*No copyright* UNKNOWN",
	"*No copyright* GENERATED FILE",
}

// ToolConfig holds the tool settings loaded from .bst-license-checker.yaml.
type ToolConfig struct {
	BST             BSTConfig     `yaml:"bst"              json:"bst"`
	Scanner         ScannerConfig `yaml:"scanner"          json:"scanner"`
	Workers         int           `yaml:"workers"          json:"workers"          validate:"min=1,max=64"`
	InvalidLicenses []string      `yaml:"invalid_licenses" json:"invalid_licenses,omitempty"`
	DenyLicenses    []string      `yaml:"deny_licenses"    json:"deny_licenses,omitempty" validate:"dive,required"`
}

// BSTConfig configures the BuildStream invocation.
type BSTConfig struct {
	Binary  string        `yaml:"binary"  json:"binary"  validate:"required"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"min=0"`
}

// ScannerConfig configures the license detection tool.
type ScannerConfig struct {
	Binary  string        `yaml:"binary"  json:"binary"  validate:"required"`
	Args    []string      `yaml:"args"    json:"args"    validate:"dive,required"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"min=0"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() ToolConfig {
	return ToolConfig{
		BST: BSTConfig{
			Binary:  "bst",
			Timeout: 30 * time.Minute,
		},
		Scanner: ScannerConfig{
			Binary:  "licensecheck",
			Args:    []string{"-mr", "."},
			Timeout: 30 * time.Minute,
		},
		Workers: 1,
	}
}

// InvalidLicenseSet merges the default invalid values with configured extras.
func (c ToolConfig) InvalidLicenseSet() []string {
	out := append([]string(nil), DefaultInvalidLicenses...)
	return append(out, c.InvalidLicenses...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the config and reports every problem found, not just the first.
func (c ToolConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var all error
	for _, fe := range fieldErrs {
		all = multierr.Append(all, fmt.Errorf("%s: failed %q (value %v)", yamlPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return all
}

// yamlPath drops the struct name from "ToolConfig.scanner.binary".
func yamlPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
