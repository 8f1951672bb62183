// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "tripmart/cli/internal/errors"
)

const mePath = "/api/users/me"

// meCacheTTL bounds how long a fetched profile is reused within one process.
const meCacheTTL = 10 * time.Minute

// GetMe calls GET /api/users/me. The profile is cached for meCacheTTL so
// whoami and the login greeting do not fetch it twice.
func (g *Gateway) GetMe(ctx context.Context) (map[string]any, error) {
	g.meMu.Lock()
	if g.meCache != nil && time.Since(g.meCacheTime) < meCacheTTL {
		cached := g.meCache
		g.meMu.Unlock()
		return cached, nil
	}
	g.meMu.Unlock()

	raw, err := g.Send(ctx, http.MethodGet, mePath, nil, nil)
	if err != nil {
		return nil, err
	}

	var userData map[string]any
	if err := json.Unmarshal(raw, &userData); err != nil || userData == nil {
		return nil, apperrors.New(apperrors.Malformed, "profile response is not an object")
	}
	// Some deployments wrap the profile under "user".
	if inner, ok := userData["user"].(map[string]any); ok {
		userData = inner
	}

	g.meMu.Lock()
	g.meCache = userData
	g.meCacheTime = time.Now()
	g.meMu.Unlock()

	return userData, nil
}
