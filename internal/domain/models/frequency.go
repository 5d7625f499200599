package models

import (
	"fmt"
	"strconv"
	"strings"
)

// SubscriptionFrequency is the billing frequency code the Pay Now gateway
// expects in the m18 field.
type SubscriptionFrequency int

const (
	FrequencyMonthly    SubscriptionFrequency = 1
	FrequencyWeekly     SubscriptionFrequency = 2
	FrequencyBiWeekly   SubscriptionFrequency = 3
	FrequencyQuarterly  SubscriptionFrequency = 4
	FrequencySixMonthly SubscriptionFrequency = 5
	FrequencyAnnually   SubscriptionFrequency = 6
	FrequencyDaily      SubscriptionFrequency = 7
)

var frequencyNames = map[SubscriptionFrequency]string{
	FrequencyMonthly:    "monthly",
	FrequencyWeekly:     "weekly",
	FrequencyBiWeekly:   "bi_weekly",
	FrequencyQuarterly:  "quarterly",
	FrequencySixMonthly: "six_monthly",
	FrequencyAnnually:   "annually",
	FrequencyDaily:      "daily",
}

// Valid reports whether the frequency is one of the seven codes the gateway
// accepts.
func (f SubscriptionFrequency) Valid() bool {
	_, ok := frequencyNames[f]
	return ok
}

func (f SubscriptionFrequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// ParseSubscriptionFrequency accepts either a numeric code ("1".."7") or a
// case-insensitive frequency name ("monthly", "bi_weekly", ...).
func ParseSubscriptionFrequency(value string) (SubscriptionFrequency, error) {
	if code, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		f := SubscriptionFrequency(code)
		if f.Valid() {
			return f, nil
		}
		return 0, fmt.Errorf("invalid subscription frequency code %d", code)
	}

	name := strings.ToLower(strings.TrimSpace(value))
	for f, n := range frequencyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("invalid subscription frequency %q", value)
}
