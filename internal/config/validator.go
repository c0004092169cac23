package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidBackends returns the accepted store.backend values
func ValidBackends() []string {
	return []string{BackendSQLite, BackendNeo4j}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	switch c.Store.Backend {
	case BackendSQLite:
		if c.DB.Path == "" {
			errs = append(errs, ValidationError{Field: "db.path", Value: c.DB.Path, Message: "must not be empty"})
		}
	case BackendNeo4j:
		if c.Neo4j.URI == "" {
			errs = append(errs, ValidationError{Field: "neo4j.uri", Value: c.Neo4j.URI, Message: "must not be empty"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "store.backend",
			Value:   c.Store.Backend,
			Message: "must be one of " + strings.Join(ValidBackends(), ", "),
		})
	}

	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "must not be empty"})
	}

	for i, p := range c.Estimate.Levels {
		if !(p > 0 && p < 1) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("estimate.levels[%d]", i),
				Value:   p,
				Message: "must be strictly between 0 and 1",
			})
		}
	}
	return errs
}
