package config

import (
	"fmt"
	"strings"
	"time"
)

// MongoConfig holds the document store connection settings.
type MongoConfig struct {
	URI        string        `koanf:"uri"`
	Database   string        `koanf:"database"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

// String returns a string representation of the Mongo configuration with credentials masked.
func (c *MongoConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- MongoDB ---\n")
	b.WriteString(fmt.Sprintf("  uri: %s\n", MaskURL(c.URI)))
	b.WriteString(fmt.Sprintf("  database: %s\n", c.Database))
	b.WriteString(fmt.Sprintf("  collection: %s\n", c.Collection))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *MongoConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo URI is not configured")
	}
	if !isValidMongoURI(c.URI) {
		return fmt.Errorf("mongo URI must start with 'mongodb://' or 'mongodb+srv://': %s", MaskURL(c.URI))
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database name is not configured")
	}
	if c.Collection == "" {
		return fmt.Errorf("mongo collection name is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("mongo connect timeout is not configured")
	}
	return nil
}

// isValidMongoURI checks if the provided URI uses one of the MongoDB connection string schemes
func isValidMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") ||
		strings.HasPrefix(uri, "mongodb+srv://")
}

// MaskURL hides the user info part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		scheme := ""
		if i := strings.Index(parts[0], "://"); i >= 0 {
			scheme = parts[0][:i+3]
		}
		return scheme + "****@" + parts[1]
	}
	return url
}
