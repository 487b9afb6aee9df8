// Package types holds the small interfaces shared across bcforge packages.
package types
