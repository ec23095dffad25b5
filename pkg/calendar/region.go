// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package calendar

import (
	"fmt"
	"strings"
	"time"
)

// localeZones maps the app's selectable country locales to the zone used
// for that region.
var localeZones = map[string]string{
	"ja_JP": "Asia/Tokyo",
	"en_US": "America/New_York",
	"zh_CN": "Asia/Shanghai",
	"en_GB": "Europe/London",
	"de_DE": "Europe/Berlin",
	"fr_FR": "Europe/Paris",
	"ko_KR": "Asia/Seoul",
	"en_AU": "Australia/Sydney",
	"en_CA": "America/Toronto",
	"pt_BR": "America/Sao_Paulo",
}

// LoadRegion resolves a region setting to a location. The setting is
// either one of the app's country locales (e.g. "ja_JP") or an IANA zone
// name (e.g. "Europe/Berlin").
func LoadRegion(region string) (*time.Location, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, fmt.Errorf("empty region")
	}
	if zone, ok := localeZones[region]; ok {
		region = zone
	}
	loc, err := time.LoadLocation(region)
	if err != nil {
		return nil, fmt.Errorf("unknown region %q: %w", region, err)
	}
	return loc, nil
}

// ResolveRegion is LoadRegion with a fallback for unset or unknown
// regions.
func ResolveRegion(region string, fallback *time.Location) *time.Location {
	loc, err := LoadRegion(region)
	if err != nil {
		return fallback
	}
	return loc
}
