package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// fileConfig is the optional YAML overlay. Only the operator-facing
// reconciliation settings live here; server and Redis settings stay on the
// environment.
type fileConfig struct {
	ExclusionSuffixes []string `yaml:"exclusion_suffixes"`
	DownloadFolder    string   `yaml:"download_folder"`
	ReportFolder      string   `yaml:"report_folder"`
	StorePath         string   `yaml:"store_path"`
	Drive             struct {
		BaseURL  string `yaml:"base_url"`
		APIToken string `yaml:"api_token"`
		PageSize int    `yaml:"page_size"`
	} `yaml:"drive"`
}

func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	if len(fc.ExclusionSuffixes) > 0 {
		c.Reconcile.ExclusionSuffixes = fc.ExclusionSuffixes
	}
	if fc.DownloadFolder != "" {
		c.Reconcile.DownloadFolder = fc.DownloadFolder
	}
	if fc.ReportFolder != "" {
		c.Reconcile.ReportFolder = fc.ReportFolder
	}
	if fc.StorePath != "" {
		c.Reconcile.StorePath = fc.StorePath
	}
	if fc.Drive.BaseURL != "" {
		c.Drive.BaseURL = fc.Drive.BaseURL
	}
	if fc.Drive.APIToken != "" {
		c.Drive.APIToken = fc.Drive.APIToken
	}
	if fc.Drive.PageSize > 0 {
		c.Drive.PageSize = fc.Drive.PageSize
	}
	return nil
}
