package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Portfolio Dashboard Configuration

[storage]
# Storage driver: "json" or "sqlite"
driver = "json"
# Portfolio location; empty stores portfolio.json (or portfolio.db) next to this file
path = ""

[portfolio]
# Display name of the primary mutual fund owner; "Family" holdings are tracked separately
primary_owner = "Self"
# USD to INR rate used until a live rate has been fetched
fallback_usdinr = 83.0

[feeds]
amfi_url = "https://www.amfiindia.com/spages/NAVAll.txt"
yahoo_url = "https://query1.finance.yahoo.com/v8/finance/chart/"
# Per request timeout (e.g., "15s")
timeout = "15s"
# Maximum simultaneous quote requests
concurrency = 8
# Attempts per lookup, including the first
max_retries = 3
# Prices older than this are flagged as stale
stale_after = "15m"

[watch]
# Cron spec or descriptor (e.g., "@every 5m", "*/10 9-16 * * MON-FRI")
schedule = "@every 5m"
# Skip refreshes while both NSE and NASDAQ are closed
market_hours_only = true

[ui]
# Enable colored output
color_enabled = true
# Language used to order text columns
language = "en"
# Date format
date_format = "02-Jan-2006"

[logging]
# debug, info, warn, error
level = "info"
console = true
file = true
# Empty logs to logs/portfolio.log in the config directory
file_path = ""
max_size = 20
max_backups = 5
max_age = 30
`

const credentialsTemplate = `# Portfolio Dashboard Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[github]
# Personal access token with repo scope
token = ""
# Repository as owner/name
repo = ""
# File inside the repository
path = "data/portfolio.json"
# Empty uses the default branch
branch = ""
`

func createTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}
