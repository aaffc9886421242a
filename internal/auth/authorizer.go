package auth

import (
	"log/slog"
	"regexp"
)

// Authorizer decides whether a principal's roles permit a request. A
// permission grants access when its method equals the request method and
// its url, interpreted as a regular expression, matches the request
// path. Any single match grants; no match denies. There is no deny
// permission kind.
type Authorizer struct {
	perms  PermissionRepository
	logger *slog.Logger
}

func NewAuthorizer(perms PermissionRepository, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		perms:  perms,
		logger: logger,
	}
}

func (a *Authorizer) Authorize(roleIDs []int64, method, path string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	permissions, err := a.perms.ForRoles(roleIDs)
	if err != nil {
		return false, err
	}

	for _, perm := range permissions {
		if perm.Method != method {
			continue
		}
		pattern, err := regexp.Compile(perm.URL)
		if err != nil {
			// a broken stored pattern can never match
			a.logger.Warn("invalid permission url pattern",
				"permission", perm.Name,
				"url", perm.URL,
				"error", err)
			continue
		}
		if pattern.MatchString(path) {
			return true, nil
		}
	}

	return false, nil
}
