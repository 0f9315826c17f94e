package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Company is one selectable tenant in the portal sidebar.
type Company struct {
	ID   string `yaml:"id" toml:"id" json:"id"`
	Name string `yaml:"name" toml:"name" json:"name"`
	Logo string `yaml:"logo" toml:"logo" json:"logo"`
}

// Catalog is the static content the portal shows around the chat.
type Catalog struct {
	App struct {
		Title       string `yaml:"title" toml:"title" json:"title"`
		Description string `yaml:"description" toml:"description" json:"description"`
		Version     string `yaml:"version" toml:"version" json:"version"`
	} `yaml:"app" toml:"app" json:"app"`
	Welcome      string    `yaml:"welcome" toml:"welcome" json:"welcome"`
	QuickActions []string  `yaml:"quick_actions" toml:"quick_actions" json:"quickActions"`
	Companies    []Company `yaml:"companies" toml:"companies" json:"companies"`
}

// LoadCatalog reads the catalog at path, or the embedded default when path is empty.
// The decoder is picked by file extension.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return ParseCatalog(defaultCatalog, "yaml")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b, strings.TrimPrefix(filepath.Ext(path), "."))
}

func ParseCatalog(b []byte, format string) (*Catalog, error) {
	var c Catalog
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml catalog: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(b), &c); err != nil {
			return nil, fmt.Errorf("parse toml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if len(c.Companies) == 0 {
		return nil, fmt.Errorf("catalog has no companies")
	}
	return &c, nil
}

// Company looks up a company by id.
func (c *Catalog) Company(id string) (Company, bool) {
	for _, co := range c.Companies {
		if co.ID == id {
			return co, true
		}
	}
	return Company{}, false
}

// DefaultCompany is the first configured company.
func (c *Catalog) DefaultCompany() Company {
	return c.Companies[0]
}
