package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// decode unmarshals the JSON body into dst and runs struct validation on it.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("httpapi: decode body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("httpapi: validate body: %w", err)
	}
	return nil
}
