/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// callingContextSuffix is appended to every Mobius cluster URI from
// discovery to form the device API base URL.
const callingContextSuffix = "/calling/web/"

var serviceDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,62}(\.[a-zA-Z0-9][a-zA-Z0-9-]{0,62})+$`)

// validateServiceData checks the service indicator and domain combination
// before any network activity. Calling accepts an empty domain; every
// non-empty domain must look like a hostname, and contact-center requires
// one.
func validateServiceData(sd ServiceData) error {
	switch sd.Indicator {
	case ServiceIndicatorCalling:
		if sd.Domain != "" && !serviceDomainPattern.MatchString(sd.Domain) {
			return fmt.Errorf("invalid service domain %q", sd.Domain)
		}
	case ServiceIndicatorContactCenter:
		if !serviceDomainPattern.MatchString(sd.Domain) {
			return fmt.Errorf("contact center requires a valid service domain, got %q", sd.Domain)
		}
	default:
		return fmt.Errorf("invalid service indicator %q", sd.Indicator)
	}
	return nil
}

// MobiusURIs is the deduplicated primary/backup URI roster used for
// registration attempts.
type MobiusURIs struct {
	Primary []string
	Backup  []string
}

// filterMobiusURIs turns a discovery response into the attempt roster.
// Each discovered URI gets the calling context suffix, duplicates are
// removed preserving first occurrence, and the default URL is appended to
// the backup list as a last resort. When discovery yields no primary URIs
// the default URL becomes the sole primary instead.
func filterMobiusURIs(servers MobiusServers, defaultURL string) MobiusURIs {
	defaultURI := strings.TrimSuffix(defaultURL, "/") + callingContextSuffix

	seen := make(map[string]bool)
	appendURIs := func(dst []string, uris []string) []string {
		for _, uri := range uris {
			full := strings.TrimSuffix(uri, "/") + callingContextSuffix
			if seen[full] {
				continue
			}
			seen[full] = true
			dst = append(dst, full)
		}
		return dst
	}

	var out MobiusURIs
	out.Primary = appendURIs(out.Primary, servers.Primary.URIs)
	out.Backup = appendURIs(out.Backup, servers.Backup.URIs)

	if len(out.Primary) == 0 {
		out.Primary = []string{defaultURI}
	} else if !seen[defaultURI] {
		out.Backup = append(out.Backup, defaultURI)
	}
	return out
}

// registrationJitter returns a random duration in [min, max].
func registrationJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// failoverInterval computes the raw wait before the next registration
// attempt: base + mfactor^attempt backoff units + jitter. Clamping against
// the backup switch threshold happens in the failover timer, which knows
// the elapsed time.
func failoverInterval(cfg *Config, attempt int) time.Duration {
	unit := cfg.BackoffUnit
	if unit <= 0 {
		unit = time.Second
	}
	backoff := unit
	for i := 0; i < attempt; i++ {
		backoff *= time.Duration(cfg.RegistrationMFactor)
	}
	return cfg.BaseRegistrationRetry + backoff + registrationJitter(cfg.JitterMin, cfg.JitterMax)
}

// failbackInterval picks a uniform random wait in [min, max] rehoming
// units.
func failbackInterval(cfg *Config, min, max int) time.Duration {
	unit := cfg.FailbackUnit
	if unit <= 0 {
		unit = time.Minute
	}
	if max <= min {
		return time.Duration(min) * unit
	}
	n := min + rand.Intn(max-min+1)
	return time.Duration(n) * unit
}
