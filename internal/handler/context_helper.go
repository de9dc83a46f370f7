package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

// uintParam reads a positive numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return uint(id), nil
}

// optionalUintQuery returns the first non-empty query value among keys, parsed as a positive id.
func optionalUintQuery(c *gin.Context, keys ...string) (*uint, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key)
		}
		value := uint(id)
		return &value, nil
	}
	return nil, nil
}

func boolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}
