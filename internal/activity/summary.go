package activity

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"time"

	"tabtime/internal/model"
)

// TopDomainCount is the number of domains reported by Summarize.
const TopDomainCount = 5

// DomainTotal is the time spent on one hostname.
type DomainTotal struct {
	Domain     string        `json:"domain" yaml:"domain"`
	Productive time.Duration `json:"productive" yaml:"productive"`
	Wasted     time.Duration `json:"wasted" yaml:"wasted"`
}

// Total returns productive plus wasted time.
func (d DomainTotal) Total() time.Duration {
	return d.Productive + d.Wasted
}

// Summary aggregates the activity log.
type Summary struct {
	Entries         int           `json:"entries" yaml:"entries"`
	ProductiveCount int           `json:"productiveCount" yaml:"productive_count"`
	WastedCount     int           `json:"wastedCount" yaml:"wasted_count"`
	Productive      time.Duration `json:"productive" yaml:"productive"`
	Wasted          time.Duration `json:"wasted" yaml:"wasted"`
	TopDomains      []DomainTotal `json:"topDomains" yaml:"top_domains"`
}

// ProductivePercent returns the productive share of tracked time, rounded.
func (s Summary) ProductivePercent() int {
	total := s.Productive + s.Wasted
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Productive) / float64(total) * 100))
}

// Summarize computes totals and the busiest domains. Records whose URL has
// no parsable hostname count toward the totals but not toward any domain.
func Summarize(records []model.ActivityRecord) Summary {
	var s Summary
	byDomain := make(map[string]*DomainTotal)

	for _, r := range records {
		d := r.Metadata.DurationValue()
		s.Entries++
		if r.IsProductive {
			s.ProductiveCount++
			s.Productive += d
		} else {
			s.WastedCount++
			s.Wasted += d
		}

		host := hostname(r.Metadata.URL)
		if host == "" {
			continue
		}
		dt, ok := byDomain[host]
		if !ok {
			dt = &DomainTotal{Domain: host}
			byDomain[host] = dt
		}
		if r.IsProductive {
			dt.Productive += d
		} else {
			dt.Wasted += d
		}
	}

	domains := make([]DomainTotal, 0, len(byDomain))
	for _, dt := range byDomain {
		domains = append(domains, *dt)
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Total() != domains[j].Total() {
			return domains[i].Total() > domains[j].Total()
		}
		return domains[i].Domain < domains[j].Domain
	})
	if len(domains) > TopDomainCount {
		domains = domains[:TopDomainCount]
	}
	s.TopDomains = domains
	return s
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// FormatDuration renders d the way the dashboard does: whole seconds below a
// minute ("42s"), minutes and seconds otherwise ("3m 5s").
func FormatDuration(d time.Duration) string {
	seconds := int64(math.Round(d.Seconds()))
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
